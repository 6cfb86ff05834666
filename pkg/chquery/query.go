// Package chquery answers point-to-point shortest-path requests over an
// already-preprocessed chgraph.Store: bidirectional upward Dijkstra to find
// the meet node, then shortcut unpacking to recover the base-edge path.
package chquery

import (
	"math"

	"github.com/tanjung/chroute/pkg/chgraph"
)

// weightScale is the fixed-point factor hosts use to encode real-world
// weights before calling Store.AddEdge; Query divides by it on return so
// the host gets back its original unit. This must match the host's own
// scaling convention — see spec.md §6.
const weightScale = 1000.0

// Query runs bidirectional upward Dijkstra from s to t over store and
// returns the reconstructed base-edge path and its distance in the host's
// original (unscaled) unit. Out-of-range endpoints or an unreachable target
// both yield (nil, 0).
func Query(store *chgraph.Store, s, t uint32) ([]uint32, float64) {
	if s >= store.NumNodes || t >= store.NumNodes {
		return nil, 0
	}
	if s == t {
		return []uint32{s}, 0
	}

	state := AcquireState(store.NumNodes)
	defer ReleaseState(state)

	state.touch(s)
	state.DistFwd[s] = 0
	state.FwdPQ.Push(s, 0)

	state.touch(t)
	state.DistBwd[t] = 0
	state.BwdPQ.Push(t, 0)

	mu, meetNode := run(store, state)
	if meetNode == noNode || mu == math.MaxUint32 {
		return nil, 0
	}

	overlayPath := reconstructPath(state, meetNode)
	path := unpackPath(store, overlayPath)
	return path, float64(mu) / weightScale
}

// run alternates forward and backward relaxation steps until both queues
// are exhausted of candidates that could still improve mu, the tentative
// meeting cost. Only upward edges (strictly increasing rank) are relaxed in
// either direction, which is what bounds the search and is what makes the
// bidirectional meet-in-the-middle correct for a contraction hierarchy.
func run(store *chgraph.Store, state *State) (mu uint32, meetNode uint32) {
	mu = math.MaxUint32
	meetNode = noNode

	for state.FwdPQ.Len() > 0 || state.BwdPQ.Len() > 0 {
		if state.FwdPQ.Len() > 0 && state.FwdPQ.PeekDist() < mu {
			item := state.FwdPQ.Pop()
			u, d := item.Node, item.Dist

			if d > state.DistFwd[u] {
				goto backward // stale entry
			}

			if state.DistBwd[u] < math.MaxUint32 {
				if cand := d + state.DistBwd[u]; cand < mu {
					mu = cand
					meetNode = u
				}
			}

			for _, e := range store.OutEdges[u] {
				if store.Rank[e.Target] <= store.Rank[u] {
					continue // only relax upward edges
				}
				newDist := d + e.Weight
				if newDist < state.DistFwd[e.Target] {
					state.touch(e.Target)
					state.DistFwd[e.Target] = newDist
					state.PredFwd[e.Target] = u
					state.FwdPQ.Push(e.Target, newDist)
				}
			}
		}

	backward:
		if state.BwdPQ.Len() > 0 && state.BwdPQ.PeekDist() < mu {
			item := state.BwdPQ.Pop()
			u, d := item.Node, item.Dist

			if d > state.DistBwd[u] {
				continue // stale entry
			}

			if state.DistFwd[u] < math.MaxUint32 {
				if cand := state.DistFwd[u] + d; cand < mu {
					mu = cand
					meetNode = u
				}
			}

			for _, e := range store.InEdges[u] {
				if store.Rank[e.Target] <= store.Rank[u] {
					continue
				}
				newDist := d + e.Weight
				if newDist < state.DistBwd[e.Target] {
					state.touch(e.Target)
					state.DistBwd[e.Target] = newDist
					state.PredBwd[e.Target] = u
					state.BwdPQ.Push(e.Target, newDist)
				}
			}
		}

		if state.FwdPQ.PeekDist() >= mu && state.BwdPQ.PeekDist() >= mu {
			break
		}
	}

	return mu, meetNode
}

// reconstructPath walks the predecessor arrays from meetNode back to s and
// forward to t, producing the full s -> meetNode -> t overlay node sequence.
func reconstructPath(state *State, meetNode uint32) []uint32 {
	var fwdHalf []uint32
	for node := meetNode; node != noNode; node = state.PredFwd[node] {
		fwdHalf = append(fwdHalf, node)
	}
	for i, j := 0, len(fwdHalf)-1; i < j; i, j = i+1, j-1 {
		fwdHalf[i], fwdHalf[j] = fwdHalf[j], fwdHalf[i]
	}

	path := fwdHalf
	for node := state.PredBwd[meetNode]; node != noNode; node = state.PredBwd[node] {
		path = append(path, node)
	}
	return path
}
