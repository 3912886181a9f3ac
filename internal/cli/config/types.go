// Package config provides configuration management for the gqlperf CLI.
//
// Values are layered from defaults, an optional YAML file, the pipeline .env
// file, GQLPERF_-prefixed environment variables and explicitly set flags.
package config

import (
	"time"

	"github.com/leapstack-labs/gqlperf/internal/compare"
	"github.com/leapstack-labs/gqlperf/internal/engine"
)

// Source selectors accepted by --source.
const (
	SourceTestSuites = "test-suites"
	SourceClientWeb  = "client-web"
	SourceBoth       = "both"
)

// Default configuration values.
const (
	DefaultEnvFile         = ".github/performance/.env"
	DefaultEndpoint        = "http://localhost:3000/graphql"
	DefaultTokenFile       = ".auth/token"
	DefaultBaselinePath    = "results/benchmark-baseline.json"
	DefaultReportPath      = "results/benchmark-report.json"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultRequestDelay    = 100 * time.Millisecond
	DefaultDiscoveryDelay  = 200 * time.Millisecond
	DefaultOutput          = "auto" // TTY=text, non-TTY=markdown
	DefaultHistoryListSize = 20
)

// Config holds all CLI configuration options.
type Config struct {
	Source       string `koanf:"source"`
	SaveBaseline bool   `koanf:"save_baseline"`
	EnvFile      string `koanf:"env_file"`

	ThresholdMultiplier float64 `koanf:"threshold_multiplier"`
	ThresholdAbsolute   float64 `koanf:"threshold_absolute"`

	GraphQLEndpoint string `koanf:"graphql_endpoint"`
	// AuthToken, when set, takes precedence over AuthTokenFile.
	AuthToken     string `koanf:"auth_token"`
	AuthTokenFile string `koanf:"auth_token_file"`

	TestSuitesDir string `koanf:"test_suites_dir"`
	ClientWebDir  string `koanf:"client_web_dir"`

	BaselinePath string `koanf:"baseline_path"`
	ReportPath   string `koanf:"report_path"`

	RequestTimeout       time.Duration `koanf:"request_timeout"`
	RequestDelay         time.Duration `koanf:"request_delay"`
	DiscoveryDelay       time.Duration `koanf:"discovery_delay"`
	MaxRequestsPerSecond float64       `koanf:"max_requests_per_second"`

	HistoryDB   string `koanf:"history_db"`
	MetricsFile string `koanf:"metrics_file"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Thresholds returns the configured regression thresholds.
func (c *Config) Thresholds() compare.Thresholds {
	return compare.Thresholds{
		Multiplier: c.ThresholdMultiplier,
		AbsoluteMs: c.ThresholdAbsolute,
	}
}

// Sources resolves the --source selector into the ordered list of source
// trees. It returns ErrUsage for an unknown selector and an error when a
// selected source has no directory configured.
func (c *Config) Sources() ([]engine.Source, error) {
	var names []string
	switch c.Source {
	case SourceTestSuites, SourceClientWeb:
		names = []string{c.Source}
	case SourceBoth:
		names = []string{SourceTestSuites, SourceClientWeb}
	case "":
		return nil, usageErrorf("--source is required (one of %s, %s, %s)", SourceTestSuites, SourceClientWeb, SourceBoth)
	default:
		return nil, usageErrorf("invalid --source %q (one of %s, %s, %s)", c.Source, SourceTestSuites, SourceClientWeb, SourceBoth)
	}

	sources := make([]engine.Source, 0, len(names))
	for _, name := range names {
		dir := c.dirFor(name)
		if dir == "" {
			return nil, missingDirError(name)
		}
		sources = append(sources, engine.Source{Name: name, Dir: dir})
	}
	return sources, nil
}

func (c *Config) dirFor(source string) string {
	if source == SourceClientWeb {
		return c.ClientWebDir
	}
	return c.TestSuitesDir
}

func defaults() map[string]any {
	return map[string]any{
		"source":                  "",
		"save_baseline":           false,
		"env_file":                DefaultEnvFile,
		"threshold_multiplier":    compare.DefaultMultiplier,
		"threshold_absolute":      compare.DefaultAbsoluteMs,
		"graphql_endpoint":        DefaultEndpoint,
		"auth_token_file":         DefaultTokenFile,
		"baseline_path":           DefaultBaselinePath,
		"report_path":             DefaultReportPath,
		"request_timeout":         DefaultRequestTimeout.String(),
		"request_delay":           DefaultRequestDelay.String(),
		"discovery_delay":         DefaultDiscoveryDelay.String(),
		"max_requests_per_second": 0.0,
		"verbose":                 false,
		"output":                  DefaultOutput,
	}
}
