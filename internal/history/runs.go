package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Mode is what a run did with its results.
type Mode string

// Run modes.
const (
	ModeCompare           Mode = "compare"
	ModeSaveBaseline      Mode = "save-baseline"
	ModeBootstrapBaseline Mode = "bootstrap-baseline"
)

// Outcome is how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeRunning   Outcome = "running"
	OutcomePassed    Outcome = "passed"
	OutcomeRegressed Outcome = "regressed"
	OutcomeFailed    Outcome = "failed"
	OutcomeBaselined Outcome = "baselined"
)

// Run is one recorded benchmark invocation.
type Run struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Endpoint    string     `json:"endpoint"`
	Sources     []string   `json:"sources"`
	Mode        Mode       `json:"mode"`
	Outcome     Outcome    `json:"outcome"`
	Executed    int        `json:"executed"`
	Regressions int        `json:"regressions"`
}

// Duration returns the wall time of a completed run, or zero.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CreateRun inserts a new run in the running state.
func (s *Store) CreateRun(ctx context.Context, endpoint string, sources []string, mode Mode) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Endpoint:  endpoint,
		Sources:   sources,
		Mode:      mode,
		Outcome:   OutcomeRunning,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, endpoint, sources, mode, outcome) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(timeLayout), run.Endpoint, strings.Join(sources, ","), string(mode), string(run.Outcome),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	s.logger.Debug("created run", "run_id", run.ID, "mode", mode)
	return run, nil
}

// RecordExecutions stores the results of a run in one transaction.
func (s *Store) RecordExecutions(ctx context.Context, runID string, results []core.ExecutionResult) error {
	if s.db == nil {
		return errNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO executions
		 (run_id, key, source, query_name, query_file, phase, status, response_time_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		var errMsg sql.NullString
		if r.Error != "" {
			errMsg = sql.NullString{String: r.Error, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, r.Key, r.Source, r.QueryName, r.QueryFile,
			string(r.Phase), string(r.Status), r.ResponseTimeMs, errMsg,
		); err != nil {
			return fmt.Errorf("failed to record %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit executions: %w", err)
	}
	return nil
}

// CompleteRun marks a run as finished.
func (s *Store) CompleteRun(ctx context.Context, runID string, outcome Outcome, executed, regressions int) error {
	if s.db == nil {
		return errNotOpen
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, outcome = ?, executed = ?, regressions = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), string(outcome), executed, regressions, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, started_at, completed_at, endpoint, sources, mode, outcome, executed, regressions`

// GetRun returns one run by ID. An unambiguous ID prefix, such as the short
// form shown by the history listing, also matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s.getRunByPrefix(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) getRunByPrefix(ctx context.Context, prefix string) (*Run, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		likeEscaper.Replace(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Executions returns the recorded results of a run ordered by key.
func (s *Store) Executions(ctx context.Context, runID string) ([]core.ExecutionResult, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, source, query_name, query_file, phase, status, response_time_ms, error
		 FROM executions WHERE run_id = ? ORDER BY key`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var results []core.ExecutionResult
	for rows.Next() {
		var (
			r      core.ExecutionResult
			phase  string
			status string
			errMsg sql.NullString
		)
		if err := rows.Scan(&r.Key, &r.Source, &r.QueryName, &r.QueryFile, &phase, &status, &r.ResponseTimeMs, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		r.Phase = core.Phase(phase)
		r.Status = core.Status(status)
		r.Error = errMsg.String
		results = append(results, r)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		startedAt   string
		completedAt sql.NullString
		sources     string
		mode        string
		outcome     string
	)
	if err := sc.Scan(&run.ID, &startedAt, &completedAt, &run.Endpoint, &sources, &mode, &outcome,
		&run.Executed, &run.Regressions); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t

	if completedAt.Valid {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	if sources != "" {
		run.Sources = strings.Split(sources, ",")
	}
	run.Mode = Mode(mode)
	run.Outcome = Outcome(outcome)
	return &run, nil
}
