package engine

// run.go - benchmark orchestration and outcome semantics

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/gqlperf/internal/baseline"
	"github.com/leapstack-labs/gqlperf/internal/bench"
	"github.com/leapstack-labs/gqlperf/internal/compare"
	"github.com/leapstack-labs/gqlperf/internal/history"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// SourceSummary counts what happened to one source's operations.
type SourceSummary struct {
	Source   string `json:"source"`
	Parsed   int    `json:"parsed"`
	Skipped  int    `json:"skipped"`
	Executed int    `json:"executed"`
}

// Outcome is the result of a benchmark run.
type Outcome struct {
	RunID    string
	Mode     history.Mode
	Sources  []SourceSummary
	Results  []core.ExecutionResult
	Baseline *baseline.Baseline
	// Report is nil in save-baseline mode.
	Report *compare.Report
}

// Run benchmarks every configured source in order and then saves or
// compares the baseline. It returns ErrRegressions together with the outcome
// when the comparison found regressions. Any 401 aborts the whole run.
func (e *Engine) Run(ctx context.Context) (*Outcome, error) {
	if e.cfg.Client == nil {
		return nil, errNoClient
	}
	if e.cfg.Baseline == nil {
		return nil, errors.New("no baseline store configured")
	}

	out := &Outcome{Mode: history.ModeSaveBaseline}

	var prior *baseline.Baseline
	if !e.cfg.SaveBaseline {
		b, err := e.cfg.Baseline.Load()
		switch {
		case errors.Is(err, baseline.ErrNoBaseline):
			e.logger.Info("no usable baseline; this run will create one", "path", e.cfg.Baseline.Path())
			out.Mode = history.ModeBootstrapBaseline
		case err != nil:
			return nil, err
		default:
			prior = b
			out.Mode = history.ModeCompare
		}
	}

	run := e.startRun(ctx, out.Mode)
	if run != nil {
		out.RunID = run.ID
	}

	err := e.execute(ctx, out)
	if err == nil {
		err = e.conclude(out, prior)
	}

	e.finishRun(ctx, run, out, err)
	e.exportMetrics(out)
	return out, err
}

func (e *Engine) execute(ctx context.Context, out *Outcome) error {
	for _, src := range e.cfg.Sources {
		e.logger.Info("benchmarking source", "source", src.Name, "dir", src.Dir)

		prepared, err := e.Prepare(ctx, src)
		if err != nil {
			return err
		}

		// Each source gets its own discovery context.
		dc, err := e.Discover(ctx)
		if err != nil {
			return fmt.Errorf("discovery for %s: %w", src.Name, err)
		}

		jobs := prepared.Jobs(dc)
		summary := SourceSummary{Source: src.Name, Parsed: len(jobs)}
		for _, job := range jobs {
			if !job.Classification.Phase.Executable() {
				summary.Skipped++
				e.logger.Debug("operation skipped",
					"source", src.Name, "operation", job.Operation.Name, "reason", job.Classification.Reason)
			}
		}

		executor := bench.New(bench.Config{
			Client:    e.cfg.Client,
			Fragments: prepared.Fragments,
			Pacer:     e.cfg.RequestPacer,
			Logger:    e.logger,
		})
		results, err := executor.Run(ctx, src.Name, jobs)
		out.Results = append(out.Results, results...)
		summary.Executed = len(results)
		out.Sources = append(out.Sources, summary)
		if err != nil {
			return err
		}

		e.logger.Info("source completed",
			"source", src.Name,
			"parsed", summary.Parsed,
			"skipped", summary.Skipped,
			"executed", summary.Executed)
	}

	if len(out.Results) == 0 {
		return ErrNothingExecuted
	}
	return nil
}

func (e *Engine) conclude(out *Outcome, prior *baseline.Baseline) error {
	if out.Mode != history.ModeCompare {
		b, err := e.cfg.Baseline.Save(e.cfg.Endpoint, out.Results)
		if err != nil {
			return err
		}
		out.Baseline = b
		if out.Mode == history.ModeSaveBaseline {
			return nil
		}
	} else {
		out.Baseline = prior
	}

	entries := compare.Compare(out.Results, prior, e.cfg.Thresholds)
	out.Report = compare.NewReport(out.RunID, e.cfg.Endpoint, entries, e.cfg.Thresholds, e.now())

	if e.cfg.ReportPath != "" {
		if err := out.Report.Write(e.cfg.ReportPath); err != nil {
			return err
		}
		e.logger.Info("report written", "path", e.cfg.ReportPath)
	}

	if out.Report.HasRegressions() {
		return fmt.Errorf("%w: %d of %d operations",
			ErrRegressions, out.Report.Summary.Regressions, out.Report.Summary.Total)
	}
	return nil
}

func (e *Engine) startRun(ctx context.Context, mode history.Mode) *history.Run {
	if e.cfg.History == nil {
		return nil
	}
	names := make([]string, 0, len(e.cfg.Sources))
	for _, s := range e.cfg.Sources {
		names = append(names, s.Name)
	}
	run, err := e.cfg.History.CreateRun(ctx, e.cfg.Endpoint, names, mode)
	if err != nil {
		e.logger.Warn("failed to record run start", "error", err)
		return nil
	}
	return run
}

func (e *Engine) finishRun(ctx context.Context, run *history.Run, out *Outcome, runErr error) {
	if run == nil {
		return
	}
	// Record even when the caller's context was cancelled.
	ctx = context.WithoutCancel(ctx)

	if err := e.cfg.History.RecordExecutions(ctx, run.ID, out.Results); err != nil {
		e.logger.Warn("failed to record executions", "run_id", run.ID, "error", err)
	}

	regressions := 0
	if out.Report != nil {
		regressions = out.Report.Summary.Regressions
	}
	if err := e.cfg.History.CompleteRun(ctx, run.ID, outcomeOf(out, runErr), len(out.Results), regressions); err != nil {
		e.logger.Warn("failed to record run completion", "run_id", run.ID, "error", err)
	}
}

func outcomeOf(out *Outcome, err error) history.Outcome {
	switch {
	case errors.Is(err, ErrRegressions):
		return history.OutcomeRegressed
	case err != nil:
		return history.OutcomeFailed
	case out.Mode == history.ModeCompare:
		return history.OutcomePassed
	default:
		return history.OutcomeBaselined
	}
}

func (e *Engine) exportMetrics(out *Outcome) {
	if e.cfg.Metrics == nil {
		return
	}
	e.cfg.Metrics.ObserveResults(out.Results)
	e.cfg.Metrics.ObserveReport(out.Report)
	if e.cfg.MetricsFile == "" {
		return
	}
	if err := e.cfg.Metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.logger.Warn("failed to write metrics", "path", e.cfg.MetricsFile, "error", err)
	}
}
