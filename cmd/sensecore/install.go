package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/application/validation"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/infrastructure/parser"
)

type installOptions struct {
	core         string
	localRuntime map[string]string
	remove       []string
	dryRun       bool
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	o := &installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Record the core module location in the dispatch file",
		Long: `Update the dispatch file. Existing entries not named by flags are kept.

Examples:
  sensecore install --core /usr/lib/sensecore/libsensecore.wasm
  sensecore install --local-runtime amd64=./runtime --dry-run
  sensecore install --remove-local-runtime arm64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, g, o)
		},
	}
	cmd.Flags().StringVar(&o.core, "core", "", "absolute path of the system core module")
	cmd.Flags().StringToStringVar(&o.localRuntime, "local-runtime", nil, "ARCH=PATH local runtime override")
	cmd.Flags().StringSliceVar(&o.remove, "remove-local-runtime", nil, "architectures whose override is removed")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the resulting file instead of writing it")
	return cmd
}

func runInstall(cmd *cobra.Command, g *globalOptions, o *installOptions) error {
	if o.core == "" && len(o.localRuntime) == 0 && len(o.remove) == 0 {
		return fmt.Errorf("nothing to install: pass --core, --local-runtime or --remove-local-runtime")
	}
	store, err := g.store()
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	if o.core != "" {
		reg.Core = o.core
	}
	for arch, path := range o.localRuntime {
		if reg.LocalRuntime == nil {
			reg.LocalRuntime = make(map[string]string)
		}
		reg.LocalRuntime[arch] = path
	}
	for _, arch := range o.remove {
		delete(reg.LocalRuntime, arch)
	}
	if len(reg.LocalRuntime) == 0 {
		reg.LocalRuntime = nil
	}

	if err := checkDispatch(cmd, reg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.dryRun {
		b, err := parser.NewYamlDispatchParser().Marshal(reg)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	}
	if err := store.Save(reg); err != nil {
		return err
	}
	g.logger.InfoContext(cmd.Context(), "dispatch file updated", "path", store.ConfigPath())
	fmt.Fprintf(out, "%s wrote %s\n", checkMark, store.ConfigPath())
	return nil
}

func checkDispatch(cmd *cobra.Command, reg *entities.DispatchRegistry) error {
	v, err := validation.NewDispatchValidator()
	if err != nil {
		return err
	}
	res, err := v.Validate(reg)
	if err != nil {
		return err
	}
	if res.Valid {
		return nil
	}
	for _, e := range res.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s: %s\n", crossMark, e.Field, e.Message)
	}
	return fmt.Errorf("refusing to write an invalid dispatch file")
}
