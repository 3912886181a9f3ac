// Package dag tracks dependencies between GraphQL fragments.
// A fragment depends on every fragment it spreads; the graph answers
// transitive-dependency and cycle questions for the fragment registry.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph of fragment names. An edge from -> to means
// fragment `from` spreads fragment `to`.
type Graph struct {
	nodes      map[string]bool
	deps       map[string][]string // fragment -> fragments it spreads
	dependents map[string][]string // fragment -> fragments spreading it
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]bool),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddFragment registers a fragment name. Adding a name twice is a no-op.
func (g *Graph) AddFragment(name string) {
	g.nodes[name] = true
}

// Has reports whether name was registered.
func (g *Graph) Has(name string) bool {
	return g.nodes[name]
}

// AddSpread records that fragment from spreads fragment to.
// Both must already be registered. Self-spreads are recorded so that
// Cycle can report them.
func (g *Graph) AddSpread(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("fragment %q is not registered", from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("fragment %q is not registered", to)
	}

	if !contains(g.deps[from], to) {
		g.deps[from] = append(g.deps[from], to)
	}
	if !contains(g.dependents[to], from) {
		g.dependents[to] = append(g.dependents[to], from)
	}
	return nil
}

// Len returns the number of registered fragments.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct spreads.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, to := range g.deps {
		count += len(to)
	}
	return count
}

// DirectDependencies returns the fragments name spreads directly, sorted.
func (g *Graph) DirectDependencies(name string) []string {
	out := append([]string(nil), g.deps[name]...)
	sort.Strings(out)
	return out
}

// Dependencies returns every fragment reachable from name, sorted.
// name itself is included only if it participates in a cycle.
func (g *Graph) Dependencies(name string) []string {
	return g.reach(name, g.deps)
}

// Dependents returns every fragment that transitively spreads name, sorted.
func (g *Graph) Dependents(name string) []string {
	return g.reach(name, g.dependents)
}

func (g *Graph) reach(start string, adj map[string][]string) []string {
	seen := make(map[string]bool)

	var walk func(id string)
	walk = func(id string) {
		for _, next := range adj[id] {
			if !seen[next] {
				seen[next] = true
				walk(next)
			}
		}
	}
	walk(start)

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Cycle returns one spread cycle as a path that starts and ends with the
// same fragment, or nil when the graph is acyclic. GraphQL forbids such
// cycles; the resolver still terminates on them but the document is invalid.
func (g *Graph) Cycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	parent := make(map[string]string)

	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.deps[id] {
			if !visited[next] {
				parent[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for cur := id; cur != next; cur = parent[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.sortedNodes() {
		if !visited[id] && dfs(id) {
			return cycle
		}
	}
	return nil
}

// Order returns fragments with dependencies before the fragments that spread
// them. It fails when the graph contains a cycle.
func (g *Graph) Order() ([]string, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("fragment cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.DirectDependencies(id) {
			visit(dep)
		}
		result = append(result, id)
	}

	for _, id := range g.sortedNodes() {
		visit(id)
	}
	return result, nil
}

func (g *Graph) sortedNodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
