package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/host"
	"github.com/reglet-dev/sensecore/infrastructure/dispatchstore"
	"github.com/reglet-dev/sensecore/internal/telemetry"
	sclog "github.com/reglet-dev/sensecore/log"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

// globalOptions carries the persistent flags and the seams tests replace.
type globalOptions struct {
	dispatchFile string
	logLevel     string
	logFormat    string

	// environ replaces the process environment when non-nil.
	environ map[string]string
	// modules replaces the default native module registry when non-nil.
	modules ports.ModuleRegistry

	logger   *slog.Logger
	shutdown func(context.Context) error
}

func newRootCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensecore",
		Short: "Locate, load and configure the sensecore core module",
		Long: `sensecore inspects core module discovery.

Discovery tries, in order:
  SENSECORE_<ARCH>_LOCAL_RUNTIME or local_runtime[<arch>] in the dispatch file
  the build location of the loader (probe --compiled-fallback)
  SENSECORE_CORE or core in the dispatch file

Examples:
  sensecore probe
  sensecore install --core /usr/lib/sensecore/libsensecore.wasm
  sensecore validate /etc/sensecore/dispatch.yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: g.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if g.shutdown == nil {
				return nil
			}
			return g.shutdown(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&g.dispatchFile, "dispatch-file", "", "dispatch file path (default $SENSECORE_DISPATCH_FILE or /etc/sensecore/dispatch.yaml)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newProbeCmd(g),
		newCUIDCmd(),
		newStatusCmd(),
		newSchemaCmd(),
		newValidateCmd(g),
		newInstallCmd(g),
		newVersionCmd(),
	)
	return cmd
}

func (g *globalOptions) setup(cmd *cobra.Command, _ []string) error {
	opts := &slog.HandlerOptions{Level: sclog.ParseLevel(g.logLevel)}
	switch g.logFormat {
	case "text":
		g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	case "json":
		g.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	default:
		return fmt.Errorf("unknown log format %q", g.logFormat)
	}

	cfg, err := telemetry.ParseConfig(g.environ)
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(cmd.Context(), "sensecore", cfg)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	g.shutdown = shutdown
	return nil
}

func (g *globalOptions) dispatchPath() (string, error) {
	if g.dispatchFile != "" {
		return g.dispatchFile, nil
	}
	cfg, err := host.ParseEnv(g.environ)
	if err != nil {
		return "", err
	}
	return cfg.DispatchFile, nil
}

func (g *globalOptions) store() (*dispatchstore.FileStore, error) {
	path, err := g.dispatchPath()
	if err != nil {
		return nil, err
	}
	return dispatchstore.NewFileStore(dispatchstore.WithPath(path)), nil
}
