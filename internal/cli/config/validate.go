package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// ErrUsage marks command-line misuse. It is reported before any network
// activity.
var ErrUsage = errors.New("usage error")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func missingDirError(source string) error {
	key := "test_suites_dir"
	if source == SourceClientWeb {
		key = "client_web_dir"
	}
	return fmt.Errorf("no directory configured for source %s\nHint: set %s in the env file or GQLPERF_%s",
		source, key, strings.ToUpper(key))
}

// Validate checks value ranges. Source selection is checked separately by
// Sources so that commands which do not benchmark can run without it.
func (c *Config) Validate() error {
	if !positiveFinite(c.ThresholdMultiplier) {
		return usageErrorf("threshold multiplier must be a positive number, got %v", c.ThresholdMultiplier)
	}
	// Zero is the strictest absolute setting: any slowdown at all regresses.
	if c.ThresholdAbsolute < 0 || !finite(c.ThresholdAbsolute) {
		return usageErrorf("absolute threshold must be a non-negative number of milliseconds, got %v", c.ThresholdAbsolute)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RequestDelay < 0 || c.DiscoveryDelay < 0 {
		return fmt.Errorf("request_delay and discovery_delay must not be negative")
	}
	if c.MaxRequestsPerSecond < 0 || math.IsNaN(c.MaxRequestsPerSecond) {
		return fmt.Errorf("max_requests_per_second must not be negative, got %v", c.MaxRequestsPerSecond)
	}
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return usageErrorf("invalid output format %q (auto|text|markdown|json)", c.OutputFormat)
	}
	return nil
}

func positiveFinite(f float64) bool {
	return f > 0 && finite(f)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Token returns the bearer token, preferring auth_token over the token file.
// The file content is trimmed; a missing or empty file is an error.
func (c *Config) Token() (string, error) {
	if t := strings.TrimSpace(c.AuthToken); t != "" {
		return t, nil
	}
	if c.AuthTokenFile == "" {
		return "", errors.New("no auth token configured (set auth_token_file or GQLPERF_AUTH_TOKEN)")
	}
	raw, err := os.ReadFile(c.AuthTokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("auth token file %s is empty", c.AuthTokenFile)
	}
	return token, nil
}
