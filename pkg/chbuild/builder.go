// Package chbuild drives preprocessing: given a node ordering computed by
// some external heuristic (see pkg/ordering for a reference one), it
// assigns ranks in that order and invokes the Contractor for each node.
package chbuild

import (
	"time"

	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/chcontract"
	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/chwitness"
)

// progressInterval is how often Build emits progress telemetry.
const progressInterval = 5000

// Stats summarizes a completed preprocessing run.
type Stats struct {
	NodesContracted int
	ShortcutsAdded  int
	CoreSize        int
	Elapsed         time.Duration
}

// Build iterates order, assigning ranks 0, 1, 2, ... and contracting each
// node in turn. Nodes absent from order are left with an unassigned rank
// and are effectively excluded from shortest-path acceleration, per
// spec's documented boundary behavior.
//
// If contracting the next node in order would exceed
// chcontract.MaxShortcutsPerContraction, contraction stops entirely: that
// node and everything remaining in order are not contracted (no shortcuts
// are computed for them) and are assigned ranks at the tail as a core, the
// same way the rest of the graph already has ranks. Their store.Contracted
// flag is still set, as SetRank does for any ranked node, so duplicates in
// order are skipped. log may be nil, in which case progress is not reported.
func Build(store *chgraph.Store, order []uint32, log *zap.Logger) Stats {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	ws := chwitness.NewState(store.NumNodes)
	var stats Stats
	rank := int32(0)

	i := 0
	for ; i < len(order); i++ {
		v := order[i]
		if store.Contracted[v] {
			continue // tolerate a node appearing more than once in order
		}

		added, ok := chcontract.Contract(ws, store, v)
		if !ok {
			log.Info("shortcut cap exceeded, stopping contraction and forming a core",
				zap.Uint32("node", v),
				zap.Int("contracted", stats.NodesContracted),
			)
			break
		}

		store.Rank[v] = rank
		rank++
		stats.NodesContracted++
		stats.ShortcutsAdded += added

		if stats.NodesContracted%progressInterval == 0 {
			log.Info("contraction progress",
				zap.Int("contracted", stats.NodesContracted),
				zap.Int("total", len(order)),
				zap.Int("shortcuts", stats.ShortcutsAdded),
			)
		}
	}

	// Everything from i onward (including the node that triggered the
	// break, if any) never got shortcuts computed. It keeps its original
	// edges and is assigned a rank at the tail, so it still participates
	// in upward search as the top of the hierarchy.
	for ; i < len(order); i++ {
		v := order[i]
		if store.Contracted[v] {
			continue
		}
		store.Contracted[v] = true
		store.Rank[v] = rank
		rank++
		stats.CoreSize++
	}

	stats.Elapsed = time.Since(start)
	log.Info("contraction complete",
		zap.Int("nodesContracted", stats.NodesContracted),
		zap.Int("shortcutsAdded", stats.ShortcutsAdded),
		zap.Int("coreSize", stats.CoreSize),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats
}
