// Package metrics exports run results in the Prometheus text format so a
// node_exporter textfile collector can pick them up after each run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/gqlperf/internal/compare"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Recorder collects the metrics of one run in a private registry.
// A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	duration    *prometheus.HistogramVec // by source, phase and status
	operations  *prometheus.CounterVec   // by source and status
	regressions prometheus.Gauge
}

// NewRecorder creates a recorder with all metrics registered.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gqlperf",
			Name:      "operation_duration_milliseconds",
			Help:      "Response time of benchmarked GraphQL operations in milliseconds",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"source", "phase", "status"}),

		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gqlperf",
			Name:      "operations_total",
			Help:      "Number of executed GraphQL operations",
		}, []string{"source", "status"}),

		regressions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gqlperf",
			Name:      "regressions",
			Help:      "Operations flagged as regressions in the last comparison",
		}),
	}

	for _, c := range []prometheus.Collector{r.duration, r.operations, r.regressions} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return r, nil
}

// ObserveResults records every execution.
func (r *Recorder) ObserveResults(results []core.ExecutionResult) {
	if r == nil {
		return
	}
	for _, res := range results {
		r.duration.WithLabelValues(res.Source, string(res.Phase), string(res.Status)).
			Observe(float64(res.ResponseTimeMs))
		r.operations.WithLabelValues(res.Source, string(res.Status)).Inc()
	}
}

// ObserveReport records the comparison outcome.
func (r *Recorder) ObserveReport(report *compare.Report) {
	if r == nil || report == nil {
		return
	}
	r.regressions.Set(float64(report.Summary.Regressions))
}

// WriteTextfile writes the metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
