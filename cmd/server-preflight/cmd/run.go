package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/serverpreflight/internal/config"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
	"github.com/Aman-CERP/serverpreflight/internal/metrics"
	"github.com/Aman-CERP/serverpreflight/internal/preflight"
	"github.com/Aman-CERP/serverpreflight/internal/probe"
	"github.com/Aman-CERP/serverpreflight/internal/searchindex"
)

// Host probes, replaced in tests so results do not depend on the machine.
var (
	newMemoryProbe = func() probe.MemoryProbe { return probe.HostMemory{} }
	hostOptions    = func() []preflight.HostOption { return nil }
)

type runOptions struct {
	jsonOutput    bool
	verbose       bool
	heapSizeCheck bool
	probeRetries  int
	probeDelay    time.Duration
}

// bind registers the run flags on cmd. The root command and "run" share them.
func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.jsonOutput, "json", false, "Output the report as JSON")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "List passing checks too")
	f.BoolVar(&o.heapSizeCheck, "heap-size-check", false, "Also check opensearch['heap_size'] bounds")
	f.IntVar(&o.probeRetries, "probe-retries", probe.DefaultRetries, "Search index version probe retries after the first attempt")
	f.DurationVar(&o.probeDelay, "probe-delay", probe.DefaultRetryDelay, "Delay between version probe attempts")
}

func newRunCmd(g *globals) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all preflight validators",
		Long: `Run every registered validator against the merged configuration.

Validators:
  host          free disk space under the data directory, open file limit
  search_index  memory, reindex sleep times, external index settings,
                queue mode and the running search index version

Exits with status 1 if any check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreflight(cmd.Context(), cmd, g, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// applyProbeFlags overrides the probe settings with flags set on the command line.
func (o runOptions) applyProbeFlags(cmd *cobra.Command, s *config.Settings) error {
	if cmd.Flags().Changed("probe-retries") {
		s.Probe.Retries = o.probeRetries
	}
	if cmd.Flags().Changed("probe-delay") {
		s.Probe.RetryDelay = o.probeDelay
	}
	return s.Validate()
}

func runPreflight(ctx context.Context, cmd *cobra.Command, g *globals, opts runOptions) error {
	defer g.teardown()
	g.jsonErrors = opts.jsonOutput
	logger := g.logger
	s := g.settings
	if err := opts.applyProbeFlags(cmd, s); err != nil {
		return err
	}

	snap, err := config.LoadSnapshot(g.configPath, g.defaultsPath)
	if err != nil {
		return err
	}

	rec := metrics.New()
	reg := preflight.NewRegistry()
	reg.Register(preflight.HostName, preflight.NewHostConstructor(s.MarkerDir(),
		append([]preflight.HostOption{preflight.WithHostLogger(logger)}, hostOptions()...)...))
	reg.Register(searchindex.Name, searchindex.NewConstructor(
		searchindex.WithLogger(logger),
		searchindex.WithMemoryProbe(newMemoryProbe()),
		searchindex.WithHeapSizeCheck(opts.heapSizeCheck),
		searchindex.WithVersionObserver(rec.SetSearchIndexVersion),
		searchindex.WithVersionOptions(
			probe.WithRetries(s.Probe.Retries),
			probe.WithRetryDelay(s.Probe.RetryDelay)),
		searchindex.WithHTTPOptions(probe.WithTimeout(s.Probe.Timeout)),
	))

	runner := preflight.NewRunner(reg,
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithVerbose(opts.verbose),
		preflight.WithJSON(opts.jsonOutput),
		preflight.WithLogger(logger))

	logger.Info("running preflight",
		slog.String("config", snap.UserConfigPath),
		slog.Any("validators", reg.Names()))
	report := runner.Run(ctx, snap)

	if err := runner.PrintReport(report); err != nil {
		return perrors.InternalError("failed to print report", err)
	}

	rec.Observe(report)
	if s.MetricsFile != "" {
		if err := rec.WriteTextfile(s.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", perrors.FormatForLog(err)...)
		}
	}

	if err := report.Err(); err != nil {
		return err
	}

	if err := preflight.MarkPassed(s.MarkerDir(), report.StartedAt); err != nil {
		logger.Warn("failed to record passing run", perrors.FormatForLog(err)...)
	}
	logger.Info("preflight passed",
		slog.String("status", report.SummaryStatus()),
		slog.Duration("duration", report.Duration))
	return nil
}
