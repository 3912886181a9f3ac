package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/gqlperf/internal/bench"
	"github.com/leapstack-labs/gqlperf/internal/classify"
	"github.com/leapstack-labs/gqlperf/internal/discovery"
	"github.com/leapstack-labs/gqlperf/internal/fragment"
	"github.com/leapstack-labs/gqlperf/internal/loader"
	"github.com/leapstack-labs/gqlperf/internal/parser"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

var errNoClient = errors.New("discovery requires a GraphQL client")

// Prepared is a parsed source, ready to be classified.
type Prepared struct {
	Source     Source
	Files      int
	Fragments  *fragment.Registry
	Operations []core.Operation
	// Cycle is a fragment spread cycle, if one exists.
	Cycle []string
}

// Prepare loads a source's files, builds its fragment registry and parses
// its operations in file order.
func (e *Engine) Prepare(ctx context.Context, src Source) (*Prepared, error) {
	files, err := loader.Load(ctx, src.Dir)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	p := &Prepared{
		Source:    src,
		Files:     len(files),
		Fragments: fragment.Build(files, e.logger),
	}
	for _, f := range files {
		p.Operations = append(p.Operations, parser.ParseOperations(f.Path, f.Text)...)
	}

	if cycle := p.Fragments.Graph().Cycle(); cycle != nil {
		p.Cycle = cycle
		e.logger.Warn("fragment spread cycle", "source", src.Name, "cycle", strings.Join(cycle, " -> "))
	}

	e.logger.Info("source parsed",
		"source", src.Name,
		"files", p.Files,
		"fragments", p.Fragments.Len(),
		"operations", len(p.Operations))
	return p, nil
}

// Jobs classifies every operation against dc, which may be nil.
func (p *Prepared) Jobs(dc *discovery.Context) []bench.Job {
	jobs := make([]bench.Job, 0, len(p.Operations))
	for _, op := range p.Operations {
		jobs = append(jobs, bench.Job{Operation: op, Classification: classify.Classify(op, dc)})
	}
	return jobs
}

// Discover runs the discovery sequence for one source.
func (e *Engine) Discover(ctx context.Context) (*discovery.Context, error) {
	if e.cfg.Client == nil {
		return nil, errNoClient
	}
	return discovery.NewExecutor(discovery.Config{
		Client: e.cfg.Client,
		Pacer:  e.cfg.DiscoveryPacer,
		Logger: e.logger,
	}).Run(ctx)
}

// PlanEntry is the dry-run verdict for one operation.
type PlanEntry struct {
	Operation      core.Operation
	Classification core.Classification
	// SyntaxError is set when the request document would not parse.
	SyntaxError error
}

// SourcePlan is the dry-run result of one source.
type SourcePlan struct {
	Prepared *Prepared
	Entries  []PlanEntry
	// Discovered holds the identifiers found, or nil without discovery.
	Discovered *discovery.Context
}

// Counts tallies entries per phase.
func (sp *SourcePlan) Counts() map[core.Phase]int {
	counts := make(map[core.Phase]int)
	for _, e := range sp.Entries {
		counts[e.Classification.Phase]++
	}
	return counts
}

// Plan classifies every source without executing benchmark operations. With
// discover set, discovery queries run first so identifiers can be resolved.
func (e *Engine) Plan(ctx context.Context, discover bool) ([]*SourcePlan, error) {
	var plans []*SourcePlan
	for _, src := range e.cfg.Sources {
		prepared, err := e.Prepare(ctx, src)
		if err != nil {
			return nil, err
		}
		executor := bench.New(bench.Config{Fragments: prepared.Fragments, Logger: e.logger})

		sp := &SourcePlan{Prepared: prepared}
		if discover {
			dc, err := e.Discover(ctx)
			if err != nil {
				return nil, err
			}
			sp.Discovered = dc
		}

		for _, job := range prepared.Jobs(sp.Discovered) {
			entry := PlanEntry{Operation: job.Operation, Classification: job.Classification}
			if job.Classification.Phase.Executable() {
				doc, err := executor.Document(job.Operation)
				if err == nil {
					err = parser.CheckSyntax(job.Operation.Name, doc)
				}
				entry.SyntaxError = err
			}
			sp.Entries = append(sp.Entries, entry)
		}
		plans = append(plans, sp)
	}
	return plans, nil
}
