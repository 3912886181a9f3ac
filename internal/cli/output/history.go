package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/gqlperf/internal/history"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// RunJSON is the JSON shape of one recorded run.
type RunJSON struct {
	Run        *history.Run           `json:"run"`
	Executions []core.ExecutionResult `json:"executions"`
}

// RenderRuns writes recorded runs, newest first.
func RenderRuns(r *Renderer, runs []*history.Run) error {
	if r.EffectiveMode() == ModeJSON {
		if runs == nil {
			runs = []*history.Run{}
		}
		return r.JSON(runs)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Println(r.Muted("No runs recorded yet."))
		return nil
	}

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		rows = append(rows, table.Row{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			strings.Join(run.Sources, ","),
			r.outcome(run.Outcome),
			run.Executed,
			run.Regressions,
			duration,
		})
	}
	r.Table(table.Row{"Run", "Started", "Mode", "Sources", "Outcome", "Executed", "Regressions", "Duration"}, rows)
	return nil
}

// RenderRun writes one recorded run followed by its executions.
func RenderRun(r *Renderer, run *history.Run, executions []core.ExecutionResult) error {
	if run.CompletedAt == nil {
		r.Warnf("run %s has not completed; results may be partial", shortID(run.ID))
	}

	if r.EffectiveMode() == ModeJSON {
		if executions == nil {
			executions = []core.ExecutionResult{}
		}
		return r.JSON(RunJSON{Run: run, Executions: executions})
	}

	r.Header(1, "Run "+run.ID)
	r.KeyValue("Started", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	r.KeyValue("Endpoint", run.Endpoint)
	r.KeyValue("Sources", strings.Join(run.Sources, ","))
	r.KeyValue("Mode", string(run.Mode))
	r.KeyValue("Outcome", r.outcome(run.Outcome))
	r.KeyValue("Executed", fmt.Sprintf("%d", run.Executed))
	r.KeyValue("Regressions", fmt.Sprintf("%d", run.Regressions))
	if run.CompletedAt != nil {
		r.KeyValue("Duration", run.Duration().Round(time.Millisecond).String())
	}
	r.Println("")

	if len(executions) == 0 {
		r.Println(r.Muted("No executions recorded."))
		return nil
	}

	rows := make([]table.Row, 0, len(executions))
	for _, e := range executions {
		rows = append(rows, table.Row{
			e.Key,
			e.Phase,
			r.executionStatus(e.Status),
			fmt.Sprintf("%dms", e.ResponseTimeMs),
			e.Error,
		})
	}
	r.Table(table.Row{"Operation", "Phase", "Status", "Time", "Error"}, rows)
	return nil
}

func (r *Renderer) executionStatus(s core.Status) string {
	if s == core.StatusSuccess {
		return r.Success(string(s))
	}
	return r.Error(string(s))
}

func (r *Renderer) outcome(o history.Outcome) string {
	switch o {
	case history.OutcomePassed, history.OutcomeBaselined:
		return r.Success(string(o))
	case history.OutcomeRegressed, history.OutcomeFailed:
		return r.Error(string(o))
	default:
		return r.Warning(string(o))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
