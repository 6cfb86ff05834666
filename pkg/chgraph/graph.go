// Package chgraph holds the mutable adjacency structure that the rest of
// the engine reads and writes: base edges and shortcuts during
// preprocessing, upward edges during queries.
package chgraph

import "errors"

// ErrInvalidIndex is returned by mutators when a node index falls outside [0, N).
var ErrInvalidIndex = errors.New("chgraph: invalid node index")

// NoVia marks an edge as non-shortcut: its Via field carries no meaning.
const NoVia int32 = -1

// NoRank marks a node that has not yet been assigned a rank.
const NoRank int32 = -1

// Edge is a directed edge stored in one node's adjacency slice. Weight is a
// fixed-point value scaled ×1000 relative to the caller's real-world unit
// (see Store.AddEdge). Target is the other end of the edge: for OutEdges[u]
// entries this is the edge's destination; for InEdges[v] entries this is the
// edge's source, so that both slices carry the same Edge shape.
type Edge struct {
	Target     uint32
	Weight     uint32
	IsShortcut bool
	Via        int32
}

// Store is the Graph Store: forward/backward adjacency, ranks, and the
// contracted flag, for a fixed node count. It starts out holding only base
// edges and is progressively augmented with shortcuts during Build; after
// Build it is read-only and safe for concurrent Query calls.
type Store struct {
	NumNodes uint32

	OutEdges [][]Edge
	InEdges  [][]Edge

	Rank       []int32
	Contracted []bool
}

// New allocates a Store for n nodes. All ranks start unassigned and no node
// is contracted.
func New(n uint32) *Store {
	s := &Store{
		NumNodes:   n,
		OutEdges:   make([][]Edge, n),
		InEdges:    make([][]Edge, n),
		Rank:       make([]int32, n),
		Contracted: make([]bool, n),
	}
	for i := range s.Rank {
		s.Rank[i] = NoRank
	}
	return s
}

func (s *Store) valid(u uint32) bool { return u < s.NumNodes }

// AddEdge appends a base (non-shortcut) edge u->v of the given weight to
// both OutEdges[u] and InEdges[v]. No deduplication is performed; parallel
// edges are preserved. w is expected to already be scaled ×1000 by the
// caller (chquery.Query divides by the same factor on return).
func (s *Store) AddEdge(u, v uint32, w uint32) error {
	return s.AddCHEdge(u, v, w, false, NoVia)
}

// AddCHEdge appends a prebuilt edge (base or shortcut) to both adjacency
// slices. Used directly by AddEdge, and by hosts reloading a previously
// computed hierarchy via GraphData.
func (s *Store) AddCHEdge(u, v, w uint32, isShortcut bool, via int32) error {
	if !s.valid(u) || !s.valid(v) {
		return ErrInvalidIndex
	}
	s.OutEdges[u] = append(s.OutEdges[u], Edge{Target: v, Weight: w, IsShortcut: isShortcut, Via: via})
	s.InEdges[v] = append(s.InEdges[v], Edge{Target: u, Weight: w, IsShortcut: isShortcut, Via: via})
	return nil
}

// SetRank assigns the rank of node u. Used to load a precomputed hierarchy;
// Build assigns ranks itself during preprocessing.
func (s *Store) SetRank(u uint32, r int32) error {
	if !s.valid(u) {
		return ErrInvalidIndex
	}
	s.Rank[u] = r
	if r != NoRank {
		s.Contracted[u] = true
	}
	return nil
}

// EdgeRecord is one row of GraphData's flattened edge list.
type EdgeRecord struct {
	From, To   uint32
	Weight     uint32
	IsShortcut bool
	Via        int32
}

// GraphData is the serialisable form of the augmented graph: every edge
// (base and shortcut) plus the rank assignment, suitable for persistence
// or for handing to another Store via AddCHEdge/SetRank.
type GraphData struct {
	Edges []EdgeRecord
	Ranks []int32
}

// GraphData flattens the Store's adjacency into a host-consumable edge list
// and rank array. Only OutEdges is walked; InEdges is its mirror per
// Invariant 4 and would double every row.
func (s *Store) GraphData() GraphData {
	data := GraphData{Ranks: append([]int32(nil), s.Rank...)}
	for u := uint32(0); u < s.NumNodes; u++ {
		for _, e := range s.OutEdges[u] {
			data.Edges = append(data.Edges, EdgeRecord{
				From:       u,
				To:         e.Target,
				Weight:     e.Weight,
				IsShortcut: e.IsShortcut,
				Via:        e.Via,
			})
		}
	}
	return data
}

// LoadGraphData rebuilds a Store from a previously emitted GraphData,
// intended for hosts that persist the hierarchy and reload it later without
// re-running Build. The resulting Store is query-equivalent to the one that
// produced the data (Testable Property 5).
func LoadGraphData(data GraphData) (*Store, error) {
	s := New(uint32(len(data.Ranks)))
	for u, r := range data.Ranks {
		if err := s.SetRank(uint32(u), r); err != nil {
			return nil, err
		}
	}
	for _, e := range data.Edges {
		if err := s.AddCHEdge(e.From, e.To, e.Weight, e.IsShortcut, e.Via); err != nil {
			return nil, err
		}
	}
	return s, nil
}
