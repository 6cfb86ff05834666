// Package chcontract implements node contraction: for a chosen node v, it
// inserts shortcuts (u, w) that preserve the shortest u-w distance once v's
// original edges are conceptually removed, skipping any pair for which a
// witness path already covers the shortcut weight.
package chcontract

import (
	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/chwitness"
)

// complexNodeThreshold is the |in|*|out| pair count above which a node is
// "complex": witness search is given a reduced hop budget to bound
// preprocessing cost on high-degree nodes.
const complexNodeThreshold = 500

const (
	simpleHopLimit  = 3
	complexHopLimit = 1
)

// MaxShortcutsPerContraction caps the number of shortcuts a single
// contraction may produce. A node whose contraction would exceed the cap is
// left uncontracted entirely, forming a "core" with whatever nodes remain
// at the time the cap is first hit; see chbuild.Build, which is what
// actually stops the contraction loop and assigns the core its ranks.
const MaxShortcutsPerContraction = 1000

// shortcut is a candidate shortcut edge discovered while planning the
// contraction of a node, not yet written into the graph.
type shortcut struct {
	u, w, weight uint32
}

// plan enumerates v's still-active neighbors and returns the shortcuts
// needed to contract it, without mutating store. Splitting planning from
// committing lets the caller inspect len(shortcuts) against
// MaxShortcutsPerContraction before deciding whether to contract v at all.
func plan(ws *chwitness.State, store *chgraph.Store, v uint32) []shortcut {
	var inNeighbors, outNeighbors []chgraph.Edge
	for _, e := range store.InEdges[v] {
		if !store.Contracted[e.Target] {
			inNeighbors = append(inNeighbors, e)
		}
	}
	for _, e := range store.OutEdges[v] {
		if !store.Contracted[e.Target] {
			outNeighbors = append(outNeighbors, e)
		}
	}

	if len(inNeighbors) == 0 || len(outNeighbors) == 0 {
		return nil
	}

	hopLimit := simpleHopLimit
	if len(inNeighbors)*len(outNeighbors) > complexNodeThreshold {
		hopLimit = complexHopLimit
	}

	var shortcuts []shortcut
	for _, in := range inNeighbors {
		u := in.Target
		for _, out := range outNeighbors {
			w := out.Target
			if u == w {
				continue // self-loop through v
			}

			total := in.Weight + out.Weight
			if chwitness.Search(ws, store, u, w, total, v, hopLimit) {
				continue // witness exists: shortcut is redundant
			}
			shortcuts = append(shortcuts, shortcut{u, w, total})
		}
	}
	return shortcuts
}

// commit marks v contracted and writes its planned shortcuts into store.
func commit(store *chgraph.Store, v uint32, shortcuts []shortcut) {
	store.Contracted[v] = true
	for _, sc := range shortcuts {
		// AddCHEdge only fails on out-of-range indices, which cannot
		// happen here since u, w came from store's own adjacency.
		_ = store.AddCHEdge(sc.u, sc.w, sc.weight, true, int32(v))
	}
}

// Contract attempts to contract node v against store. If v's contraction
// would produce more than MaxShortcutsPerContraction shortcuts, nothing is
// committed — v is left uncontracted and ok is false, signaling the caller
// to stop contracting and fall back to assigning the remaining nodes a
// core. Otherwise v is marked contracted, its shortcuts are inserted, and
// ok is true.
func Contract(ws *chwitness.State, store *chgraph.Store, v uint32) (added int, ok bool) {
	shortcuts := plan(ws, store, v)
	if len(shortcuts) > MaxShortcutsPerContraction {
		return 0, false
	}
	commit(store, v, shortcuts)
	return len(shortcuts), true
}
