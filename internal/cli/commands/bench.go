package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gqlperf/internal/baseline"
	"github.com/leapstack-labs/gqlperf/internal/cli/output"
	"github.com/leapstack-labs/gqlperf/internal/engine"
	"github.com/leapstack-labs/gqlperf/internal/metrics"
)

// AddBenchmarkFlags registers the benchmark flags on cmd.
func AddBenchmarkFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Operations to benchmark: test-suites, client-web or both (required)")
	cmd.Flags().Bool("save-baseline", false, "Write a fresh baseline from this run instead of comparing")
	cmd.Flags().String("env-file", "", "Path to the pipeline .env file (default .github/performance/.env)")
	cmd.Flags().Float64("threshold-multiplier", 2.0, "Flag a regression when current/baseline exceeds this ratio")
	cmd.Flags().Float64("threshold-absolute", 500, "Flag a regression when current-baseline exceeds this many ms")

	_ = cmd.RegisterFlagCompletionFunc("source", completeSource)
}

func completeSource(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"test-suites", "client-web", "both"}, cobra.ShellCompDirectiveNoFileComp
}

// RunBenchmark executes the benchmark for the selected sources, then saves
// or compares the baseline and renders the outcome. The returned error
// wraps engine.ErrRegressions when regressions were found.
func RunBenchmark(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg, logger := cc.Cfg, cc.Logger

	sources, err := cfg.Sources()
	if err != nil {
		return err
	}

	c, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	hist, closeHistory := openHistory(ctx, cfg, logger)
	defer closeHistory()

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		if rec, err = metrics.NewRecorder(); err != nil {
			logger.Warn("metrics disabled", "error", err)
			rec = nil
		}
	}

	eng := engine.New(engine.Config{
		Sources:        sources,
		Endpoint:       cfg.GraphQLEndpoint,
		Client:         c,
		Baseline:       baseline.NewStore(cfg.BaselinePath, logger),
		ReportPath:     cfg.ReportPath,
		SaveBaseline:   cfg.SaveBaseline,
		Thresholds:     cfg.Thresholds(),
		RequestPacer:   requestPacer(cfg),
		DiscoveryPacer: discoveryPacer(cfg),
		History:        hist,
		Metrics:        rec,
		MetricsFile:    cfg.MetricsFile,
		Logger:         logger,
	})

	out, runErr := eng.Run(ctx)
	if out != nil {
		if err := output.RenderOutcome(cc.Renderer, out); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}
