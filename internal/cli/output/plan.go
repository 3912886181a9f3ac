package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/gqlperf/internal/discovery"
	"github.com/leapstack-labs/gqlperf/internal/engine"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// PlanOperation is the JSON shape of one classified operation.
type PlanOperation struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	File        string         `json:"file"`
	Phase       core.Phase     `json:"phase"`
	Reason      string         `json:"reason,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
	SyntaxError string         `json:"syntax_error,omitempty"`
}

// PlanSource is the JSON shape of one planned source.
type PlanSource struct {
	Source     string                   `json:"source"`
	Files      int                      `json:"files"`
	Fragments  int                      `json:"fragments"`
	Cycle      []string                 `json:"fragment_cycle,omitempty"`
	Counts     map[core.Phase]int       `json:"counts"`
	Discovered map[discovery.Key]string `json:"discovered,omitempty"`
	Operations []PlanOperation          `json:"operations"`
}

// NewPlanSource converts a source plan for rendering.
func NewPlanSource(sp *engine.SourcePlan) PlanSource {
	ps := PlanSource{
		Source:     sp.Prepared.Source.Name,
		Files:      sp.Prepared.Files,
		Fragments:  sp.Prepared.Fragments.Len(),
		Cycle:      sp.Prepared.Cycle,
		Counts:     sp.Counts(),
		Operations: make([]PlanOperation, 0, len(sp.Entries)),
	}
	if sp.Discovered != nil {
		ps.Discovered = sp.Discovered.Values()
	}
	for _, e := range sp.Entries {
		op := PlanOperation{
			Name:      e.Operation.Name,
			Kind:      string(e.Operation.Kind),
			File:      e.Operation.FilePath,
			Phase:     e.Classification.Phase,
			Reason:    e.Classification.Reason,
			Variables: e.Classification.Variables,
		}
		if e.SyntaxError != nil {
			op.SyntaxError = e.SyntaxError.Error()
		}
		ps.Operations = append(ps.Operations, op)
	}
	return ps
}

// RenderPlan writes the dry-run classification of every source.
func RenderPlan(r *Renderer, plans []*engine.SourcePlan) error {
	sources := make([]PlanSource, 0, len(plans))
	for _, sp := range plans {
		sources = append(sources, NewPlanSource(sp))
	}
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(sources)
	}

	for _, ps := range sources {
		r.Header(1, fmt.Sprintf("%s (%d operations)", ps.Source, len(ps.Operations)))
		r.KeyValue("Files", fmt.Sprintf("%d", ps.Files))
		r.KeyValue("Fragments", fmt.Sprintf("%d", ps.Fragments))
		r.KeyValue("Phases", fmt.Sprintf("%d no-vars, %d resolvable, %d skipped",
			ps.Counts[core.PhaseNoVars], ps.Counts[core.PhaseResolvable], ps.Counts[core.PhaseSkipped]))
		if ps.Discovered != nil {
			r.KeyValue("Discovered", fmt.Sprintf("%d identifiers", len(ps.Discovered)))
		}
		if len(ps.Cycle) > 0 {
			r.KeyValue("Fragment cycle", r.Warning(strings.Join(ps.Cycle, " -> ")))
		}
		r.Println("")

		rows := make([]table.Row, 0, len(ps.Operations))
		for _, op := range ps.Operations {
			syntax := r.Success("ok")
			switch {
			case op.SyntaxError != "":
				syntax = r.Error(op.SyntaxError)
			case op.Phase == core.PhaseSkipped:
				syntax = "-"
			}
			rows = append(rows, table.Row{op.Name, op.Kind, r.phase(op.Phase), detail(op), syntax})
		}
		r.Table(table.Row{"Operation", "Kind", "Phase", "Detail", "Syntax"}, rows)
	}
	return nil
}

func (r *Renderer) phase(p core.Phase) string {
	if p == core.PhaseSkipped {
		return r.Muted(string(p))
	}
	return string(p)
}

func detail(op PlanOperation) string {
	if op.Reason != "" {
		return op.Reason
	}
	if len(op.Variables) == 0 {
		return ""
	}
	names := make([]string, 0, len(op.Variables))
	for name := range op.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("$%s=%v", name, op.Variables[name]))
	}
	return strings.Join(parts, ", ")
}
