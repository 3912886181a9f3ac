package dag

import (
	"reflect"
	"testing"
)

func buildGraph(t *testing.T, names []string, spreads [][2]string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, n := range names {
		g.AddFragment(n)
	}
	for _, s := range spreads {
		if err := g.AddSpread(s[0], s[1]); err != nil {
			t.Fatalf("failed to add spread %v: %v", s, err)
		}
	}
	return g
}

func TestGraph_AddFragmentAndSpread(t *testing.T) {
	g := buildGraph(t, []string{"Space", "Profile", "Visual"}, [][2]string{
		{"Space", "Profile"},
		{"Profile", "Visual"},
	})

	if g.Len() != 3 {
		t.Errorf("expected 3 fragments, got %d", g.Len())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 spreads, got %d", g.EdgeCount())
	}
	if !g.Has("Visual") || g.Has("Missing") {
		t.Error("Has returned wrong membership")
	}
}

func TestGraph_AddSpread_Unregistered(t *testing.T) {
	g := NewGraph()
	g.AddFragment("a")

	if err := g.AddSpread("a", "missing"); err == nil {
		t.Error("expected error for unregistered target")
	}
	if err := g.AddSpread("missing", "a"); err == nil {
		t.Error("expected error for unregistered source")
	}
}

func TestGraph_DuplicateSpreads(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	if g.EdgeCount() != 1 {
		t.Errorf("expected duplicate spreads to collapse, got %d edges", g.EdgeCount())
	}
}

func TestGraph_Dependencies(t *testing.T) {
	// a -> b -> d, a -> c -> d
	g := buildGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"},
	})

	if got, want := g.Dependencies("a"), []string{"b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies(a) = %v, want %v", got, want)
	}
	if got, want := g.DirectDependencies("a"), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DirectDependencies(a) = %v, want %v", got, want)
	}
	if got, want := g.Dependents("d"), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dependents(d) = %v, want %v", got, want)
	}
	if got := g.Dependencies("d"); len(got) != 0 {
		t.Errorf("expected leaf to have no dependencies, got %v", got)
	}
}

func TestGraph_Cycle_None(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if cycle := g.Cycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestGraph_Cycle_Detected(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"},
	})

	cycle := g.Cycle()
	if len(cycle) != 4 {
		t.Fatalf("expected a 3-fragment cycle path, got %v", cycle)
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle path should start and end on the same fragment: %v", cycle)
	}
}

func TestGraph_Cycle_SelfSpread(t *testing.T) {
	g := buildGraph(t, []string{"a"}, [][2]string{{"a", "a"}})
	if got, want := g.Cycle(), []string{"a", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Cycle() = %v, want %v", got, want)
	}
}

func TestGraph_Order(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"c", "b", "a"}; !reflect.DeepEqual(order, want) {
		t.Errorf("Order() = %v, want %v", order, want)
	}
}

func TestGraph_Order_WithCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	if _, err := g.Order(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}
