// Package chwitness answers the single question the Contractor needs
// before inserting a shortcut: is there already a path of weight <= L from
// u to w that avoids the node being contracted? It is a bounded,
// hop-limited Dijkstra, the dominant cost of preprocessing.
package chwitness

import "github.com/tanjung/chroute/pkg/chgraph"

const maxUint32 = ^uint32(0)

// heapItem is an entry in the witness search min-heap.
type heapItem struct {
	node uint32
	dist uint32
	hops int
}

// heap is a concrete-typed binary min-heap keyed on dist, avoiding the
// interface boxing of container/heap for this hot loop.
type heap struct {
	items []heapItem
}

func (h *heap) Len() int { return len(h.items) }

func (h *heap) push(node, dist uint32, hops int) {
	h.items = append(h.items, heapItem{node, dist, hops})
	h.siftUp(len(h.items) - 1)
}

func (h *heap) pop() heapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *heap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *heap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *heap) reset() { h.items = h.items[:0] }

// State holds reusable scratch space for repeated witness searches during a
// single contraction, avoiding a fresh distance-array allocation per call.
type State struct {
	dist    []uint32
	touched []uint32
	h       heap
}

// NewState allocates witness search scratch space sized for a graph of n nodes.
func NewState(n uint32) *State {
	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = maxUint32
	}
	return &State{dist: dist, h: heap{items: make([]heapItem, 0, 64)}}
}

func (s *State) reset() {
	for _, n := range s.touched {
		s.dist[n] = maxUint32
	}
	s.touched = s.touched[:0]
	s.h.reset()
}

// Search returns true iff a path from u to w exists in store, of total
// weight <= L, that does not traverse exclude, using at most hopLimit hops.
// A direct edge u->w of weight <= L short-circuits the search entirely.
func Search(s *State, store *chgraph.Store, u, w uint32, L uint32, exclude uint32, hopLimit int) bool {
	for _, e := range store.OutEdges[u] {
		if e.Target == w && e.Weight <= L {
			return true
		}
	}

	s.reset()
	s.dist[u] = 0
	s.touched = append(s.touched, u)
	s.h.push(u, 0, 0)

	for s.h.Len() > 0 {
		cur := s.h.pop()

		// Stale entry: a shorter distance to this node was already settled.
		if cur.dist > s.dist[cur.node] {
			continue
		}
		if cur.dist > L {
			return false
		}
		if cur.node == w {
			return true
		}
		if cur.hops >= hopLimit {
			continue
		}

		for _, e := range store.OutEdges[cur.node] {
			t := e.Target
			if t == exclude {
				continue
			}
			if store.Contracted[t] && t != w {
				continue
			}
			newDist := cur.dist + e.Weight
			if newDist > L {
				continue
			}
			if newDist < s.dist[t] {
				if s.dist[t] == maxUint32 {
					s.touched = append(s.touched, t)
				}
				s.dist[t] = newDist
				s.h.push(t, newDist, cur.hops+1)
			}
		}
	}

	return false
}
