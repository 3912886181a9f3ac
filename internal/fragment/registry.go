// Package fragment builds the global fragment registry for a source tree and
// appends the fragment definitions an operation needs before it is sent.
package fragment

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/gqlperf/internal/dag"
	"github.com/leapstack-labs/gqlperf/internal/loader"
	"github.com/leapstack-labs/gqlperf/internal/parser"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// ...SpaceFields (the inline-fragment form `... on Space` is filtered out by name)
var spreadPattern = regexp.MustCompile(`\.\.\.\s*([_A-Za-z][_0-9A-Za-z]*)`)

// Registry maps fragment names to their first definition.
type Registry struct {
	fragments   map[string]*core.Fragment
	definitions map[string]string
	graph       *dag.Graph
	// order lists fragments with dependencies first; sorted by name when
	// the graph has a cycle.
	order  []string
	logger *slog.Logger
}

// Build scans files in order and registers every fragment. The first
// definition of a name wins; later duplicates are ignored.
func Build(files []loader.File, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{
		fragments:   make(map[string]*core.Fragment),
		definitions: make(map[string]string),
		graph:       dag.NewGraph(),
		logger:      logger,
	}

	for _, f := range files {
		for _, h := range parser.ParseFragmentHeaders(f.Text) {
			if existing, ok := r.fragments[h.Name]; ok {
				logger.Debug("ignoring duplicate fragment",
					"fragment", h.Name, "path", f.Path, "first_seen", existing.FilePath)
				continue
			}
			r.fragments[h.Name] = &core.Fragment{
				Name:          h.Name,
				TypeCondition: h.TypeCondition,
				FilePath:      f.Path,
				SourceText:    f.Text,
			}
			r.graph.AddFragment(h.Name)
		}
	}

	for _, name := range r.Names() {
		def, err := r.Definition(name)
		if err != nil {
			logger.Warn("fragment body could not be extracted", "fragment", name, "error", err)
			continue
		}
		for _, spread := range spreads(def) {
			if err := r.graph.AddSpread(name, spread); err != nil {
				logger.Debug("spread not tracked", "fragment", name, "spread", spread, "error", err)
			}
		}
	}

	order, err := r.graph.Order()
	if err != nil {
		logger.Debug("fragment order falls back to names", "error", err)
		order = r.Names()
	}
	r.order = order

	logger.Debug("fragment registry built", "fragments", r.graph.Len(), "spreads", r.graph.EdgeCount())
	return r
}

// Get returns the fragment registered under name.
func (r *Registry) Get(name string) (*core.Fragment, bool) {
	f, ok := r.fragments[name]
	return f, ok
}

// Len returns the number of registered fragments.
func (r *Registry) Len() int {
	return len(r.fragments)
}

// Names returns registered fragment names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fragments))
	for name := range r.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Graph exposes the fragment dependency graph.
func (r *Registry) Graph() *dag.Graph {
	return r.graph
}

// Definition returns the full definition text of a registered fragment.
func (r *Registry) Definition(name string) (string, error) {
	if def, ok := r.definitions[name]; ok {
		return def, nil
	}
	f, ok := r.fragments[name]
	if !ok {
		return "", &UnknownFragmentError{Name: name}
	}
	def, err := parser.ExtractFragmentDef(f.SourceText, name)
	if err != nil {
		return "", err
	}
	r.definitions[name] = def
	return def, nil
}

// UnknownFragmentError is returned for names that were never registered.
type UnknownFragmentError struct {
	Name string
}

func (e *UnknownFragmentError) Error() string {
	return "unknown fragment: " + e.Name
}

// spreads lists fragment spread names in text, in order, without duplicates.
func spreads(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range spreadPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "on" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// definedNames lists fragments defined inline in text.
func definedNames(text string) map[string]bool {
	names := make(map[string]bool)
	for _, h := range parser.ParseFragmentHeaders(text) {
		names[h.Name] = true
	}
	return names
}

func joinDefinitions(base string, defs []string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, def := range defs {
		b.WriteString("\n\n")
		b.WriteString(def)
	}
	return b.String()
}
