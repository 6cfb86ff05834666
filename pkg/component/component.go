// Package component extracts the largest weakly connected component of a
// base graph, the filtering step most preprocessing pipelines run before
// contraction: a handful of unreachable nodes (usually OSM extract
// boundary artifacts) would otherwise each get their own near-trivial CH
// hierarchy and add nothing but dead weight to queries that never touch
// them.
package component

import "github.com/tanjung/chroute/pkg/chgraph"

// unionFind is a disjoint-set structure with path halving and union by
// rank, used to group nodes into weakly connected components.
type unionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

func newUnionFind(n uint32) *unionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
		size[i] = 1
	}
	return &unionFind{parent: parent, rank: make([]byte, n), size: size}
}

func (uf *unionFind) find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y uint32) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// Largest returns the node indices of store's largest weakly connected
// component, treating every directed edge as undirected for the purpose
// of reachability.
func Largest(store *chgraph.Store) []uint32 {
	n := store.NumNodes
	if n == 0 {
		return nil
	}

	uf := newUnionFind(n)
	for u := uint32(0); u < n; u++ {
		for _, e := range store.OutEdges[u] {
			uf.union(u, e.Target)
		}
	}

	bestRoot, bestSize := uint32(0), uint32(0)
	for i := uint32(0); i < n; i++ {
		if root := uf.find(i); uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < n; i++ {
		if uf.find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// Filter builds a fresh Store containing only nodes (and the edges between
// them), remapping coordinates the same way. Only base edges are carried
// over — Filter is meant to run before contraction, so there are no
// shortcuts yet to preserve.
func Filter(store *chgraph.Store, nodeLat, nodeLon []float64, nodes []uint32) (*chgraph.Store, []float64, []float64) {
	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	filtered := chgraph.New(uint32(len(nodes)))
	lat := make([]float64, len(nodes))
	lon := make([]float64, len(nodes))

	for newIdx, oldIdx := range nodes {
		lat[newIdx] = nodeLat[oldIdx]
		lon[newIdx] = nodeLon[oldIdx]

		for _, e := range store.OutEdges[oldIdx] {
			if e.IsShortcut {
				continue
			}
			if newV, ok := oldToNew[e.Target]; ok {
				// AddEdge cannot fail here: both endpoints come from
				// filtered's own node range by construction.
				_ = filtered.AddEdge(uint32(newIdx), newV, e.Weight)
			}
		}
	}

	return filtered, lat, lon
}
