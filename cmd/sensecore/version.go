package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/domain/entities"
)

var (
	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sensecore %s\n", version)
			fmt.Fprintf(out, "  interface: %s\n", entities.SDKVersion)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", buildDate)
		},
	}
}
