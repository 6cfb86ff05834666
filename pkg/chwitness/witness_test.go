package chwitness

import (
	"testing"

	"github.com/tanjung/chroute/pkg/chgraph"
)

func TestSearchDirectEdgeShortCircuits(t *testing.T) {
	s := chgraph.New(3)
	if err := s.AddEdge(0, 2, 100); err != nil {
		t.Fatal(err)
	}

	ws := NewState(s.NumNodes)
	if !Search(ws, s, 0, 2, 100, 1, 3) {
		t.Fatal("expected direct edge to short-circuit as a witness")
	}
}

func TestSearchFindsPathAvoidingExcludedNode(t *testing.T) {
	// 0 -> 1 -> 2 (via 1, excluded) and 0 -> 3 -> 2 (the witness path).
	s := chgraph.New(4)
	must(t, s.AddEdge(0, 1, 10))
	must(t, s.AddEdge(1, 2, 10))
	must(t, s.AddEdge(0, 3, 10))
	must(t, s.AddEdge(3, 2, 10))

	ws := NewState(s.NumNodes)
	if !Search(ws, s, 0, 2, 20, 1, 3) {
		t.Fatal("expected a witness path through node 3")
	}
}

func TestSearchNoWitnessWhenOnlyPathGoesThroughExcluded(t *testing.T) {
	s := chgraph.New(3)
	must(t, s.AddEdge(0, 1, 10))
	must(t, s.AddEdge(1, 2, 10))

	ws := NewState(s.NumNodes)
	if Search(ws, s, 0, 2, 20, 1, 3) {
		t.Fatal("expected no witness since the only path goes through the excluded node")
	}
}

func TestSearchRespectsWeightBound(t *testing.T) {
	s := chgraph.New(3)
	must(t, s.AddEdge(0, 1, 10))
	must(t, s.AddEdge(1, 2, 50))

	ws := NewState(s.NumNodes)
	if Search(ws, s, 0, 2, 30, 99, 3) {
		t.Fatal("expected no witness: the alternative path exceeds the weight bound")
	}
}

func TestSearchRespectsHopLimit(t *testing.T) {
	// 0 -> 1 -> 2 -> 3 -> 4, total weight 40, well under L=1000 but 4 hops.
	s := chgraph.New(5)
	must(t, s.AddEdge(0, 1, 10))
	must(t, s.AddEdge(1, 2, 10))
	must(t, s.AddEdge(2, 3, 10))
	must(t, s.AddEdge(3, 4, 10))

	ws := NewState(s.NumNodes)
	if Search(ws, s, 0, 4, 1000, 99, 2) {
		t.Fatal("expected no witness: path requires more hops than the limit")
	}
	if !Search(ws, s, 0, 4, 1000, 99, 4) {
		t.Fatal("expected a witness once the hop limit covers the path length")
	}
}

func TestSearchPermitsContractedWitnessTarget(t *testing.T) {
	// w itself is already contracted; the witness search must still be able
	// to settle at w even though contracted nodes are otherwise pruned.
	s := chgraph.New(3)
	must(t, s.AddEdge(0, 2, 10))
	s.Contracted[2] = true

	ws := NewState(s.NumNodes)
	if !Search(ws, s, 0, 2, 10, 99, 3) {
		t.Fatal("expected witness target to be reachable even when already contracted")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
