package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// ErrNoBaseline is returned when there is no usable baseline: the file does
// not exist or was written by an incompatible version.
var ErrNoBaseline = errors.New("no baseline")

// Store reads and writes the baseline file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the baseline at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the baseline file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the baseline. A foreign version is logged and reported as
// ErrNoBaseline; malformed JSON is an error.
func (s *Store) Load() (*Baseline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoBaseline
		}
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline %s: %w", s.path, err)
	}

	if b.Version != Version {
		s.logger.Warn("ignoring baseline with unsupported version",
			"path", s.path, "version", b.Version, "supported", Version)
		return nil, ErrNoBaseline
	}
	if b.Queries == nil {
		b.Queries = make(map[string]Entry)
	}

	s.logger.Debug("baseline loaded", "path", s.path, "queries", len(b.Queries))
	return &b, nil
}

// Save writes a baseline built from results and returns it.
func (s *Store) Save(endpoint string, results []core.ExecutionResult) (*Baseline, error) {
	b := Build(endpoint, results, time.Now().UTC())
	if err := s.Write(b); err != nil {
		return nil, err
	}
	s.logger.Info("baseline saved", "path", s.path, "queries", len(b.Queries))
	return b, nil
}

// Write persists b, creating parent directories as needed.
func (s *Store) Write(b *Baseline) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create baseline directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode baseline: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace baseline: %w", err)
	}
	return nil
}
