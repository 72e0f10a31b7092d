package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/application/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [DOCUMENT]",
		Short:     "Print the JSON schema of a sensecore document",
		Long:      fmt.Sprintf("Print the JSON schema of a document (default dispatch). Documents: %v", schema.Names()),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: schema.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "dispatch"
			if len(args) == 1 {
				name = args[0]
			}
			b, err := schema.For(name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
