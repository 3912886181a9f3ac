package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/gqlperf/internal/baseline"
	"github.com/leapstack-labs/gqlperf/internal/compare"
	"github.com/leapstack-labs/gqlperf/internal/engine"
)

// OutcomeJSON is the JSON shape of a benchmark outcome.
type OutcomeJSON struct {
	RunID    string                 `json:"run_id,omitempty"`
	Mode     string                 `json:"mode"`
	Sources  []engine.SourceSummary `json:"sources"`
	Baseline *baseline.Stats        `json:"baseline_stats,omitempty"`
	Report   *compare.Report        `json:"report,omitempty"`
}

// RenderOutcome writes the result of a benchmark run.
func RenderOutcome(r *Renderer, out *engine.Outcome) error {
	if r.EffectiveMode() == ModeJSON {
		doc := OutcomeJSON{RunID: out.RunID, Mode: string(out.Mode), Sources: out.Sources, Report: out.Report}
		if out.Baseline != nil && out.Report == nil {
			doc.Baseline = &out.Baseline.AggregateStats
		}
		return r.JSON(doc)
	}

	r.Header(1, "Benchmark")
	if out.RunID != "" {
		r.KeyValue("Run", out.RunID)
	}
	r.KeyValue("Mode", string(out.Mode))
	r.Println("")

	rows := make([]table.Row, 0, len(out.Sources))
	for _, s := range out.Sources {
		rows = append(rows, table.Row{s.Source, s.Parsed, s.Skipped, s.Executed})
	}
	r.Table(table.Row{"Source", "Parsed", "Skipped", "Executed"}, rows)

	if out.Report == nil {
		if out.Baseline != nil {
			renderBaseline(r, out.Baseline)
		}
		return nil
	}
	renderReport(r, out.Report)
	return nil
}

func renderBaseline(r *Renderer, b *baseline.Baseline) {
	s := b.AggregateStats
	r.Header(2, "Baseline saved")
	r.KeyValue("Operations", fmt.Sprintf("%d", s.TotalQueries))
	r.KeyValue("Latency", fmt.Sprintf("avg %dms, p50 %dms, p95 %dms, max %dms", s.AvgMs, s.P50Ms, s.P95Ms, s.MaxMs))
}

func renderReport(r *Renderer, rep *compare.Report) {
	r.Header(2, "Results")
	rows := make([]table.Row, 0, len(rep.QueryResults))
	for _, e := range rep.QueryResults {
		rows = append(rows, table.Row{
			e.Key,
			msOrDash(e.BaselineMs),
			fmt.Sprintf("%dms", e.CurrentMs),
			deltaOrDash(e.DeltaMs),
			ratioOrDash(e.Ratio),
			r.status(e.BenchStatus),
			note(e),
		})
	}
	r.Table(table.Row{"Operation", "Baseline", "Current", "Delta", "Ratio", "Status", "Note"}, rows)

	s := rep.Summary
	r.Header(2, "Summary")
	r.KeyValue("Total", fmt.Sprintf("%d", s.Total))
	r.KeyValue("OK", fmt.Sprintf("%d", s.OK))
	r.KeyValue("Regressions", fmt.Sprintf("%d", s.Regressions))
	r.KeyValue("No baseline", fmt.Sprintf("%d", s.NoBaseline))
	r.KeyValue("Errors", fmt.Sprintf("%d", s.Errors))
	r.KeyValue("Thresholds", fmt.Sprintf("%gx or +%gms", s.ThresholdMultiplier, s.ThresholdAbsoluteMs))

	if len(rep.Regressions) == 0 {
		return
	}
	r.Println("")
	r.Header(2, "Regressions")
	for _, e := range rep.Regressions {
		r.Printf("%s %s\n", r.Error("✗"), e.Key)
		for _, reason := range e.Reasons {
			r.Printf("    %s\n", reason)
		}
	}
}

func (r *Renderer) status(s compare.BenchStatus) string {
	switch s {
	case compare.StatusOK:
		return r.Success(string(s))
	case compare.StatusRegression, compare.StatusError:
		return r.Error(string(s))
	default:
		return r.Warning(string(s))
	}
}

func note(e compare.Entry) string {
	if e.Error != "" {
		return e.Error
	}
	return strings.Join(e.Reasons, "; ")
}

func msOrDash(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%dms", *v)
}

func deltaOrDash(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+dms", *v)
}

func ratioOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fx", *v)
}
