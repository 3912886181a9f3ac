// Package bench sends classified operations to the server one at a time and
// records raw, unretried latencies.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/gqlperf/internal/client"
	"github.com/leapstack-labs/gqlperf/internal/pace"
	"github.com/leapstack-labs/gqlperf/internal/parser"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Doer sends one GraphQL request.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// FragmentResolver appends missing fragment definitions to a document.
type FragmentResolver interface {
	Resolve(operationText string) string
}

// Job is one classified operation of a source.
type Job struct {
	Operation      core.Operation
	Classification core.Classification
}

// Config holds executor configuration.
type Config struct {
	Client    Doer
	Fragments FragmentResolver
	// Pacer spaces requests; nil means no delay.
	Pacer  pace.Pacer
	Logger *slog.Logger
}

// Executor runs benchmark jobs sequentially.
type Executor struct {
	client    Doer
	fragments FragmentResolver
	pacer     pace.Pacer
	logger    *slog.Logger
}

// New creates an executor.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pacer := cfg.Pacer
	if pacer == nil {
		pacer = pace.None()
	}
	return &Executor{client: cfg.Client, fragments: cfg.Fragments, pacer: pacer, logger: logger}
}

// Document returns the request text for op: just its own definition plus the
// fragments it needs.
func (e *Executor) Document(op core.Operation) (string, error) {
	var (
		def string
		err error
	)
	if op.Anonymous {
		def, err = parser.ExtractAnonymousDef(op.RawText)
	} else {
		def, err = parser.ExtractOperationDef(op.RawText, op.Name)
	}
	if err != nil {
		return "", err
	}
	if e.fragments == nil {
		return def, nil
	}
	return e.fragments.Resolve(def), nil
}

// Run executes every executable job of source in order. Jobs in the skipped
// phase are ignored. It stops at the first 401 or when ctx is done and
// returns the results gathered so far together with the error.
func (e *Executor) Run(ctx context.Context, source string, jobs []Job) ([]core.ExecutionResult, error) {
	var results []core.ExecutionResult

	for _, job := range jobs {
		if !job.Classification.Phase.Executable() {
			continue
		}
		if err := e.pacer.Wait(ctx); err != nil {
			return results, err
		}

		res, err := e.Execute(ctx, source, job)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// Execute runs one job. Only fatal conditions are returned as errors; every
// other failure is folded into the result's status.
func (e *Executor) Execute(ctx context.Context, source string, job Job) (core.ExecutionResult, error) {
	op := job.Operation
	res := core.ExecutionResult{
		Key:       core.ResultKey(source, op.Name),
		Source:    source,
		QueryName: op.Name,
		QueryFile: op.FilePath,
		Phase:     job.Classification.Phase,
	}

	doc, err := e.Document(op)
	if err != nil {
		res.Status = core.StatusError
		res.Error = fmt.Sprintf("extract operation: %v", err)
		e.logger.Warn("operation not extractable", "key", res.Key, "error", err)
		return res, nil
	}

	req := client.Request{Query: doc, Variables: job.Classification.Variables}
	if !op.Anonymous {
		req.OperationName = op.Name
	}

	resp, err := e.client.Do(ctx, req)
	if resp != nil {
		res.ResponseTimeMs = resp.Elapsed.Milliseconds()
	}

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return res, fmt.Errorf("operation %s: %w", res.Key, err)
	case err != nil && ctx.Err() != nil:
		return res, ctx.Err()
	case err != nil:
		res.Status = core.StatusError
		res.Error = err.Error()
	case resp.HasData() && !resp.HasErrors():
		res.Status = core.StatusSuccess
	case resp.HasData():
		res.Status = core.StatusPartial
		res.Error = resp.Errors[0].Message
	default:
		res.Status = core.StatusError
		res.Error = "response carried no data"
		if resp.HasErrors() {
			res.Error = resp.Errors[0].Message
		}
	}

	e.logger.Debug("operation executed",
		"key", res.Key,
		"phase", res.Phase,
		"status", res.Status,
		"response_time_ms", res.ResponseTimeMs)
	return res, nil
}
