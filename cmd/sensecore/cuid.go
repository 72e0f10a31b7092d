package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/domain/entities"
)

func newCUIDCmd() *cobra.Command {
	var compose bool
	cmd := &cobra.Command{
		Use:   "cuid [NAME|ID]...",
		Short: "List or decode capability identifiers",
		Long: `Without arguments, list every known capability identifier. Arguments are
capability names (Session), four character codes ('SES '), hex or decimal
values.

Examples:
  sensecore cuid
  sensecore cuid Session 0x20534553
  sensecore cuid --compose Session SessionService`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, d := range capabilities.All() {
					fmt.Fprintf(w, "%s\t%s\t0x%08X\n", d.Name, d.ID, uint32(d.ID))
				}
				return w.Flush()
			}

			ids := make([]entities.CUID, 0, len(args))
			for _, arg := range args {
				id, name, err := resolveCUID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				if !compose {
					fmt.Fprintf(out, "%s\t%s\t0x%08X\n", name, id, uint32(id))
				}
			}
			if compose {
				id := entities.Compose(ids...)
				fmt.Fprintf(out, "composite\t%s\t0x%08X\n", id, uint32(id))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compose, "compose", false, "print the composite identifier of the arguments")
	return cmd
}

func resolveCUID(arg string) (entities.CUID, string, error) {
	if d, ok := capabilities.Lookup(arg); ok {
		return d.ID, d.Name, nil
	}
	id, err := entities.ParseCUID(arg)
	if err != nil {
		return 0, "", err
	}
	return id, "(unknown)", nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status CODE...",
		Short: "Describe status codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				v, err := strconv.ParseInt(arg, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid status code %q: %w", arg, err)
				}
				s := entities.Status(v)
				kind := "success"
				switch {
				case s.IsError():
					kind = "error"
				case s.IsWarning():
					kind = "warning"
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", v, s, kind)
			}
			return nil
		},
	}
}
