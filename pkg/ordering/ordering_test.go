package ordering

import (
	"testing"

	"github.com/tanjung/chroute/pkg/chbuild"
	"github.com/tanjung/chroute/pkg/chgraph"
)

func TestComputeReturnsPermutation(t *testing.T) {
	s := chgraph.New(6)
	edges := [][3]uint32{
		{0, 1, 100}, {1, 0, 100},
		{1, 2, 200}, {2, 1, 200},
		{0, 3, 300}, {3, 0, 300},
		{2, 5, 400}, {5, 2, 400},
		{3, 4, 500}, {4, 3, 500},
		{4, 5, 600}, {5, 4, 600},
	}
	for _, e := range edges {
		if err := s.AddEdge(e[0], e[1], e[2]); err != nil {
			t.Fatal(err)
		}
	}

	order := Compute(s)

	if len(order) != 6 {
		t.Fatalf("len(order) = %d, want 6", len(order))
	}
	seen := make(map[uint32]bool)
	for _, v := range order {
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Fatalf("order is not a permutation: %d distinct values", len(seen))
	}
}

func TestComputeHandlesEmptyGraph(t *testing.T) {
	s := chgraph.New(0)
	if order := Compute(s); order != nil {
		t.Fatalf("order = %v, want nil for an empty graph", order)
	}
}

func TestComputeFeedsBuildWithoutError(t *testing.T) {
	s := chgraph.New(4)
	must(t, s.AddEdge(0, 1, 10))
	must(t, s.AddEdge(1, 2, 10))
	must(t, s.AddEdge(2, 3, 10))

	order := Compute(s)
	stats := chbuild.Build(s, order, nil)

	if stats.NodesContracted != 4 {
		t.Fatalf("NodesContracted = %d, want 4", stats.NodesContracted)
	}
	for _, r := range s.Rank {
		if r == chgraph.NoRank {
			t.Fatal("a heuristic-produced order must assign every node a rank")
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
