package chquery

import (
	"math"
	"sync"
)

// noNode is the sentinel for "no predecessor"/"no meet node".
const noNode = ^uint32(0)

// State holds per-query scratch space for bidirectional upward Dijkstra:
// two distance arrays, two predecessor arrays, and two priority queues.
// Query takes its State from a pool via AcquireState and returns it with
// ReleaseState, so repeated queries reuse the same buffers; NewState
// allocates a fresh one directly.
type State struct {
	n int

	DistFwd []uint32
	DistBwd []uint32
	PredFwd []uint32
	PredBwd []uint32
	Touched []uint32

	FwdPQ minHeap
	BwdPQ minHeap
}

// NewState allocates a State sized for a graph of n nodes.
func NewState(n uint32) *State {
	s := &State{n: int(n)}
	s.DistFwd = make([]uint32, n)
	s.DistBwd = make([]uint32, n)
	s.PredFwd = make([]uint32, n)
	s.PredBwd = make([]uint32, n)
	s.Touched = make([]uint32, 0, 256)
	s.reinit()
	return s
}

func (s *State) reinit() {
	for i := range s.DistFwd {
		s.DistFwd[i] = math.MaxUint32
		s.DistBwd[i] = math.MaxUint32
		s.PredFwd[i] = noNode
		s.PredBwd[i] = noNode
	}
}

// Reset clears only the touched entries, for fast reuse within a pool.
func (s *State) Reset() {
	for _, node := range s.Touched {
		s.DistFwd[node] = math.MaxUint32
		s.DistBwd[node] = math.MaxUint32
		s.PredFwd[node] = noNode
		s.PredBwd[node] = noNode
	}
	s.Touched = s.Touched[:0]
	s.FwdPQ.Reset()
	s.BwdPQ.Reset()
}

func (s *State) touch(node uint32) {
	if s.DistFwd[node] == math.MaxUint32 && s.DistBwd[node] == math.MaxUint32 {
		s.Touched = append(s.Touched, node)
	}
}

var statePool sync.Pool

// AcquireState returns a State sized for n nodes, recycled from a pool
// when one of the right size is available.
func AcquireState(n uint32) *State {
	if v := statePool.Get(); v != nil {
		s := v.(*State)
		if s.n == int(n) {
			return s
		}
	}
	return NewState(n)
}

// ReleaseState clears s and returns it to the pool for reuse.
func ReleaseState(s *State) {
	s.Reset()
	statePool.Put(s)
}
