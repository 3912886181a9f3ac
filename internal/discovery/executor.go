package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/gqlperf/internal/client"
	"github.com/leapstack-labs/gqlperf/internal/pace"
)

// Doer sends one GraphQL request.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// Config holds executor configuration.
type Config struct {
	Client Doer
	// Pacer spaces discovery requests; nil means no delay.
	Pacer pace.Pacer
	// Queries overrides DefaultQueries when non-nil.
	Queries []Query
	Logger  *slog.Logger
}

// Executor runs the discovery sequence.
type Executor struct {
	client  Doer
	pacer   pace.Pacer
	queries []Query
	logger  *slog.Logger
}

// NewExecutor creates a discovery executor.
func NewExecutor(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pacer := cfg.Pacer
	if pacer == nil {
		pacer = pace.None()
	}
	queries := cfg.Queries
	if queries == nil {
		queries = DefaultQueries()
	}
	return &Executor{client: cfg.Client, pacer: pacer, queries: queries, logger: logger}
}

// Run executes every discovery query in order and returns the populated
// context. A 401 aborts immediately with client.ErrUnauthorized; any other
// failure is logged and the next query still runs, so a partial context is
// a normal outcome.
func (e *Executor) Run(ctx context.Context) (*Context, error) {
	dc := NewContext()

	for _, q := range e.queries {
		if err := e.pacer.Wait(ctx); err != nil {
			return dc, err
		}

		resp, err := e.client.Do(ctx, client.Request{Query: q.Document, OperationName: q.Name})
		if errors.Is(err, client.ErrUnauthorized) {
			return dc, fmt.Errorf("discovery query %s: %w", q.Name, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return dc, ctx.Err()
			}
			e.logger.Warn("discovery query failed", "query", q.Name, "error", err)
			continue
		}
		if resp.HasErrors() {
			e.logger.Warn("discovery query returned errors",
				"query", q.Name, "errors", len(resp.Errors), "first", resp.Errors[0].Message)
		}
		if !resp.HasData() {
			e.logger.Warn("discovery query returned no data", "query", q.Name)
			continue
		}
		if err := q.Extract(resp.Data, dc); err != nil {
			e.logger.Warn("discovery extraction failed", "query", q.Name, "error", err)
			continue
		}
		e.logger.Debug("discovery query completed", "query", q.Name)
	}

	e.logger.Info("discovery completed", "identifiers", len(dc.Values()))
	return dc, nil
}
