// Package engine sequences a benchmark: per source it loads operation files,
// builds the fragment registry, discovers identifiers, classifies and runs
// operations, then saves or compares against the baseline.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/leapstack-labs/gqlperf/internal/baseline"
	"github.com/leapstack-labs/gqlperf/internal/bench"
	"github.com/leapstack-labs/gqlperf/internal/compare"
	"github.com/leapstack-labs/gqlperf/internal/history"
	"github.com/leapstack-labs/gqlperf/internal/metrics"
	"github.com/leapstack-labs/gqlperf/internal/pace"
)

var (
	// ErrRegressions is returned when the comparison flagged at least one
	// regression. The outcome is still returned alongside it.
	ErrRegressions = errors.New("performance regressions detected")

	// ErrNothingExecuted is returned when no operation was sent in any
	// requested source.
	ErrNothingExecuted = errors.New("no operations were executed")
)

// Source is one logical tree of operation files.
type Source struct {
	Name string
	Dir  string
}

// Config holds engine configuration.
type Config struct {
	Sources  []Source
	Endpoint string
	// Client sends both discovery and benchmark requests. May be nil for
	// dry runs that skip discovery.
	Client bench.Doer

	Baseline     *baseline.Store
	ReportPath   string
	SaveBaseline bool
	Thresholds   compare.Thresholds

	// RequestPacer spaces benchmark requests; DiscoveryPacer spaces
	// discovery requests. Nil means no delay.
	RequestPacer   pace.Pacer
	DiscoveryPacer pace.Pacer

	// History and Metrics are optional.
	History     *history.Store
	Metrics     *metrics.Recorder
	MetricsFile string

	Logger *slog.Logger
	// Now overrides the clock for reports.
	Now func() time.Time
}

// Engine runs benchmarks.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.RequestPacer == nil {
		cfg.RequestPacer = pace.None()
	}
	if cfg.DiscoveryPacer == nil {
		cfg.DiscoveryPacer = pace.None()
	}
	if cfg.Thresholds == (compare.Thresholds{}) {
		cfg.Thresholds = compare.DefaultThresholds()
	}
	return &Engine{cfg: cfg, logger: logger, now: now}
}
