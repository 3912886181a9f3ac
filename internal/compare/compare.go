// Package compare diffs a run against a baseline with a dual relative and
// absolute threshold and builds the regression report.
package compare

import (
	"fmt"
	"math"
	"strconv"

	"github.com/leapstack-labs/gqlperf/internal/baseline"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Default thresholds.
const (
	DefaultMultiplier = 2.0
	DefaultAbsoluteMs = 500.0
)

// BenchStatus is the verdict for one operation.
type BenchStatus string

// Verdicts.
const (
	StatusOK         BenchStatus = "OK"
	StatusRegression BenchStatus = "REGRESSION"
	StatusNoBaseline BenchStatus = "NO_BASELINE"
	StatusError      BenchStatus = "ERROR"
)

// Thresholds bound the allowed slowdown. A regression needs the ratio to
// exceed Multiplier or the delta to exceed AbsoluteMs; +Inf disables a
// trigger.
type Thresholds struct {
	Multiplier float64
	AbsoluteMs float64
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Multiplier: DefaultMultiplier, AbsoluteMs: DefaultAbsoluteMs}
}

// Entry is the comparison of one current result with its baseline.
type Entry struct {
	Key         string      `json:"key"`
	BaselineMs  *int64      `json:"baselineMs,omitempty"`
	CurrentMs   int64       `json:"currentMs"`
	DeltaMs     *int64      `json:"deltaMs,omitempty"`
	Ratio       *float64    `json:"ratio,omitempty"`
	BenchStatus BenchStatus `json:"benchStatus"`
	Reasons     []string    `json:"reasons,omitempty"`

	Source    string      `json:"source"`
	QueryName string      `json:"query_name"`
	Phase     core.Phase  `json:"phase"`
	Status    core.Status `json:"status"`
	Error     string      `json:"error,omitempty"`
}

// Judge compares res against the baseline entry base (ok reports whether one
// exists). The verdict depends only on the current time, the baseline entry
// and th.
func Judge(res core.ExecutionResult, base baseline.Entry, ok bool, th Thresholds) Entry {
	e := Entry{
		Key:       res.Key,
		CurrentMs: res.ResponseTimeMs,
		Source:    res.Source,
		QueryName: res.QueryName,
		Phase:     res.Phase,
		Status:    res.Status,
		Error:     res.Error,
	}
	if ok {
		e.BaselineMs = ptr(base.ResponseTimeMs)
	}

	switch {
	case res.Status != core.StatusSuccess:
		e.BenchStatus = StatusError
		return e
	case !ok:
		e.BenchStatus = StatusNoBaseline
		return e
	}

	delta := res.ResponseTimeMs - base.ResponseTimeMs
	e.DeltaMs = ptr(delta)

	var ratio float64
	hasRatio := base.ResponseTimeMs > 0
	if hasRatio {
		ratio = float64(res.ResponseTimeMs) / float64(base.ResponseTimeMs)
		e.Ratio = ptr(round2(ratio))
	}

	if hasRatio && ratio > th.Multiplier {
		e.Reasons = append(e.Reasons, fmt.Sprintf("ratio %.2fx exceeds multiplier threshold %sx",
			round2(ratio), formatFloat(th.Multiplier)))
	}
	if float64(delta) > th.AbsoluteMs {
		e.Reasons = append(e.Reasons, fmt.Sprintf("delta +%dms exceeds absolute threshold %sms",
			delta, formatFloat(th.AbsoluteMs)))
	}

	e.BenchStatus = StatusOK
	if len(e.Reasons) > 0 {
		e.BenchStatus = StatusRegression
	}
	return e
}

// Compare judges every result against b, which may be nil.
func Compare(results []core.ExecutionResult, b *baseline.Baseline, th Thresholds) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		base, ok := b.Lookup(r.Key)
		entries = append(entries, Judge(r, base, ok, th))
	}
	return entries
}

func ptr[T any](v T) *T {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
