package chquery

import "github.com/tanjung/chroute/pkg/chgraph"

// maxUnpackDepth bounds the explicit unpack stack. The shortcut DAG is
// provably acyclic (every via was contracted strictly before the shortcut
// referencing it was inserted), so this is a defensive bound, not a
// correctness requirement.
const maxUnpackDepth = 256

// unpackPath expands every hop of an overlay-level path into the
// corresponding sequence of base-graph nodes.
func unpackPath(store *chgraph.Store, overlayNodes []uint32) []uint32 {
	if len(overlayNodes) < 2 {
		return overlayNodes
	}

	result := []uint32{overlayNodes[0]}
	for i := 0; i < len(overlayNodes)-1; i++ {
		hop := unpackHop(store, overlayNodes[i], overlayNodes[i+1])
		if len(hop) > 1 {
			result = append(result, hop[1:]...)
		}
	}
	return result
}

type unpackFrame struct {
	from, to uint32
	depth    int
}

// unpackHop expands a single overlay hop from->to into its base-graph node
// sequence (including from and to). It uses an explicit stack rather than
// recursion per spec.md's note that either is appropriate, but an explicit
// stack avoids growing the Go call stack for deep hierarchies.
func unpackHop(store *chgraph.Store, from, to uint32) []uint32 {
	stack := []unpackFrame{{from, to, 0}}
	var result []uint32

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxUnpackDepth {
			continue
		}

		via, isShortcut := shortcutVia(store, f.from, f.to)
		if !isShortcut {
			if len(result) == 0 || result[len(result)-1] != f.from {
				result = append(result, f.from)
			}
			result = append(result, f.to)
			continue
		}

		m := uint32(via)
		// Push the right half first so the left half (from->m) is popped
		// and processed first, preserving left-to-right order.
		stack = append(stack, unpackFrame{m, f.to, f.depth + 1})
		stack = append(stack, unpackFrame{f.from, m, f.depth + 1})
	}

	return result
}

// shortcutVia scans every u->v edge (never stopping at the first one found)
// and reports the via node of the first shortcut among them. If none of
// the u->v edges is a shortcut, or there is no u->v edge at all, the hop is
// treated as a base edge.
func shortcutVia(store *chgraph.Store, u, v uint32) (via int32, isShortcut bool) {
	for _, e := range store.OutEdges[u] {
		if e.Target == v && e.IsShortcut {
			return e.Via, true
		}
	}
	return chgraph.NoVia, false
}
