// Package baseline persists versioned latency snapshots and computes their
// aggregate percentile statistics.
package baseline

import (
	"time"

	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Version is the only baseline format this build reads and writes.
const Version = 1

// Baseline is a saved snapshot of successful operation latencies.
type Baseline struct {
	Version        int              `json:"version"`
	SavedAt        time.Time        `json:"saved_at"`
	Endpoint       string           `json:"endpoint"`
	Queries        map[string]Entry `json:"queries"`
	AggregateStats Stats            `json:"aggregate_stats"`
}

// Entry is the recorded latency of one operation, keyed by `source::name`.
type Entry struct {
	Phase          core.Phase  `json:"phase"`
	ResponseTimeMs int64       `json:"response_time_ms"`
	Status         core.Status `json:"status"`
}

// Stats summarizes the latencies of a baseline.
type Stats struct {
	TotalQueries int   `json:"total_queries"`
	AvgMs        int64 `json:"avg_ms"`
	P50Ms        int64 `json:"p50_ms"`
	P90Ms        int64 `json:"p90_ms"`
	P95Ms        int64 `json:"p95_ms"`
	P99Ms        int64 `json:"p99_ms"`
	MinMs        int64 `json:"min_ms"`
	MaxMs        int64 `json:"max_ms"`
}

// Lookup returns the entry for key.
func (b *Baseline) Lookup(key string) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	e, ok := b.Queries[key]
	return e, ok
}

// Build creates a baseline from results. Only successful executions are
// kept; partial and failed ones never become reference values.
func Build(endpoint string, results []core.ExecutionResult, savedAt time.Time) *Baseline {
	b := &Baseline{
		Version:  Version,
		SavedAt:  savedAt,
		Endpoint: endpoint,
		Queries:  make(map[string]Entry),
	}

	var latencies []int64
	for _, r := range results {
		if r.Status != core.StatusSuccess {
			continue
		}
		b.Queries[r.Key] = Entry{Phase: r.Phase, ResponseTimeMs: r.ResponseTimeMs, Status: r.Status}
	}
	for _, e := range b.Queries {
		latencies = append(latencies, e.ResponseTimeMs)
	}
	b.AggregateStats = ComputeStats(latencies)
	return b
}
