package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/host"
)

type probeOptions struct {
	json             bool
	metrics          bool
	compiledFallback bool
	arch             string
	version          string
}

func newProbeCmd(g *globalOptions) *cobra.Command {
	o := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run discovery and report every attempt",
		Long: `Run core module discovery once, print the load report and release the
root. The command fails when no candidate produced a root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, g, o)
		},
	}
	cmd.Flags().BoolVar(&o.json, "json", false, "print the load report as JSON")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "print loader metrics in Prometheus text format")
	cmd.Flags().BoolVar(&o.compiledFallback, "compiled-fallback", false, "also try the loader build location")
	cmd.Flags().StringVar(&o.arch, "arch", "", "architecture key (default GOARCH)")
	cmd.Flags().StringVar(&o.version, "version", entities.SDKVersion.String(), "interface version to request")
	return cmd
}

func runProbe(cmd *cobra.Command, g *globalOptions, o *probeOptions) error {
	version, err := entities.ParseVersion(o.version)
	if err != nil {
		return err
	}
	store, err := g.store()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []host.LoaderOption{
		host.WithLogger(g.logger),
		host.WithEnvironment(g.environ),
		host.WithDispatchStore(store),
		host.WithCompiledFallback(o.compiledFallback),
		host.WithMetrics(host.NewMetrics(reg)),
		host.WithArch(o.arch),
		host.WithVersion(version),
	}
	if g.modules != nil {
		opts = append(opts, host.WithModuleRegistry(g.modules))
	}
	loader, err := host.NewLoader(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close(cmd.Context()) }()

	root, report, bootErr := loader.Bootstrap(cmd.Context())
	var impls []entities.ImplDesc
	if root != nil {
		if sess, ok := root.Session(); ok {
			for i := 0; ; i++ {
				desc, st := sess.QueryImpl(entities.ImplDesc{}, i)
				if st.IsError() {
					break
				}
				impls = append(impls, desc)
			}
		}
		root.Release()
	}

	out := cmd.OutOrStdout()
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printReport(out, report, impls)
	}

	if o.metrics {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}
	return bootErr
}

func printReport(out io.Writer, report *entities.LoadReport, impls []entities.ImplDesc) {
	fmt.Fprintf(out, "Requested interface %s\n\n", report.Requested)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tSTEP\tPATH\tSTATUS\tDURATION\tERROR")
	for _, a := range report.Attempts {
		mark := crossMark
		if a.Succeeded() {
			mark = checkMark
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, a.Candidate.Step, a.Candidate.Path, a.Status, a.Duration, a.Error)
	}
	_ = w.Flush()

	if report.Selected == nil {
		fmt.Fprintf(out, "\nNo core module found after %d attempts\n", len(report.Attempts))
		return
	}
	fmt.Fprintf(out, "\nLoaded %s (%s, options=%d) as root %s in %s\n",
		report.Selected.Path, report.Selected.Step, report.Selected.Options, report.RootID, report.Duration)
	for _, d := range impls {
		fmt.Fprintf(out, "  %s  merit=%d  group=0x%X  subgroup=0x%X\n", d.FriendlyName, d.Merit, uint32(d.Group), uint32(d.Subgroup))
	}
}

func writeMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(out)
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
