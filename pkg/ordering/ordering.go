// Package ordering computes a contraction order for chbuild.Build using the
// classic edge-difference heuristic: nodes whose contraction would add the
// fewest net shortcuts go first, with a lazy priority-queue update so the
// heuristic adapts as earlier contractions change a node's neighborhood.
package ordering

import (
	"container/heap"

	"github.com/tanjung/chroute/pkg/chgraph"
)

// Compute returns a permutation of [0, store.NumNodes) suitable for passing
// to chbuild.Build. It does not mutate store or insert any shortcuts; it
// only simulates, locally, how each contraction would thin out its
// neighbors' active degree.
func Compute(store *chgraph.Store) []uint32 {
	n := store.NumNodes
	if n == 0 {
		return nil
	}

	outNeighbors := make([][]uint32, n)
	inNeighbors := make([][]uint32, n)
	for u := uint32(0); u < n; u++ {
		for _, e := range store.OutEdges[u] {
			outNeighbors[u] = append(outNeighbors[u], e.Target)
		}
		for _, e := range store.InEdges[u] {
			inNeighbors[u] = append(inNeighbors[u], e.Target)
		}
	}

	contracted := make([]bool, n)
	contractedNeighbors := make([]int, n)

	activeDegree := func(v uint32) (in, out int) {
		for _, u := range inNeighbors[v] {
			if !contracted[u] {
				in++
			}
		}
		for _, u := range outNeighbors[v] {
			if !contracted[u] {
				out++
			}
		}
		return in, out
	}

	priorityOf := func(v uint32) int {
		in, out := activeDegree(v)
		edgeDifference := in*out - (in + out)
		return edgeDifference + 2*contractedNeighbors[v]
	}

	pq := make(priorityQueue, n)
	for v := uint32(0); v < n; v++ {
		pq[v] = &pqEntry{node: v, priority: priorityOf(v), index: int(v)}
	}
	heap.Init(&pq)

	order := make([]uint32, 0, n)
	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		v := entry.node

		// Lazy update: a node's priority may have changed since it was
		// queued, as its neighbors were contracted. If the fresh value is
		// above the current queue minimum, refresh and reinsert instead of
		// contracting early.
		fresh := priorityOf(v)
		if pq.Len() > 0 && fresh > pq[0].priority {
			entry.priority = fresh
			heap.Push(&pq, entry)
			continue
		}

		contracted[v] = true
		order = append(order, v)

		for _, u := range inNeighbors[v] {
			if !contracted[u] {
				contractedNeighbors[u]++
			}
		}
		for _, u := range outNeighbors[v] {
			if !contracted[u] {
				contractedNeighbors[u]++
			}
		}
	}

	return order
}

// pqEntry is one node's entry in the ordering priority queue.
type pqEntry struct {
	node     uint32
	priority int
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].priority < pq[j].priority
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index, pq[j].index = i, j
}

func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return entry
}
