package compare

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Summary tallies verdicts and records the thresholds used.
type Summary struct {
	Total               int     `json:"total"`
	OK                  int     `json:"ok"`
	Regressions         int     `json:"regressions"`
	NoBaseline          int     `json:"no_baseline"`
	Errors              int     `json:"errors"`
	ThresholdMultiplier float64 `json:"threshold_multiplier"`
	ThresholdAbsoluteMs float64 `json:"threshold_absolute_ms"`
}

// Report is the persisted outcome of a comparison run.
type Report struct {
	RunID        string    `json:"run_id,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
	Endpoint     string    `json:"endpoint"`
	QueryResults []Entry   `json:"queryResults"`
	Summary      Summary   `json:"summary"`
	Regressions  []Entry   `json:"regressions"`
}

// NewReport assembles a report from judged entries.
func NewReport(runID, endpoint string, entries []Entry, th Thresholds, now time.Time) *Report {
	r := &Report{
		RunID:        runID,
		GeneratedAt:  now,
		Endpoint:     endpoint,
		QueryResults: entries,
		Regressions:  []Entry{},
		Summary: Summary{
			Total:               len(entries),
			ThresholdMultiplier: th.Multiplier,
			ThresholdAbsoluteMs: th.AbsoluteMs,
		},
	}
	if r.QueryResults == nil {
		r.QueryResults = []Entry{}
	}

	for _, e := range entries {
		switch e.BenchStatus {
		case StatusOK:
			r.Summary.OK++
		case StatusRegression:
			r.Summary.Regressions++
			r.Regressions = append(r.Regressions, e)
		case StatusNoBaseline:
			r.Summary.NoBaseline++
		case StatusError:
			r.Summary.Errors++
		}
	}
	return r
}

// HasRegressions reports whether any entry regressed.
func (r *Report) HasRegressions() bool {
	return r.Summary.Regressions > 0
}

// Write saves the report as indented JSON.
func (r *Report) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
