package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/application/validation"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate a dispatch file",
		Long: `Validate a dispatch file against its schema and rules.

Checks:
  - YAML syntax is valid
  - Only core and local_runtime keys are present
  - core is an absolute path
  - local_runtime keys are architecture names with non-empty values

Examples:
  sensecore validate
  sensecore validate ./dispatch.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.dispatchPath()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path = args[0]
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read dispatch file: %w", err)
			}
			v, err := validation.NewDispatchValidator()
			if err != nil {
				return err
			}
			res, err := v.ValidateBytes(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Valid {
				fmt.Fprintf(out, "%s %s is valid\n", checkMark, path)
				return nil
			}
			fmt.Fprintf(out, "%s %s is invalid\n", crossMark, path)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
			}
			return fmt.Errorf("dispatch file %s has %d errors", path, len(res.Errors))
		},
	}
}
