// Package snapindex snaps arbitrary lat/lng query points onto the nearest
// road segment of a base graph, the step a host performs before handing
// node indices to chquery.Query. It replaces the teacher's hand-rolled flat
// grid index with github.com/tidwall/rtree, a dependency the teacher
// already declares but never exercises.
package snapindex

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/geo"
)

// maxSnapDistMeters bounds how far a query point may be from the nearest
// road before it is rejected as unroutable.
const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the nearest road segment is farther than
// maxSnapDistMeters from the query point.
var ErrPointTooFar = errors.New("snapindex: point too far from road")

// Result is a point snapped onto a road segment between two base-graph
// nodes.
type Result struct {
	NodeU uint32  // source node of the segment
	NodeV uint32  // target node of the segment
	Ratio float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist  float64 // meters from the query point to the snapped point
}

type segment struct {
	u, v uint32
}

// Index answers nearest-road queries against a fixed base graph. Build it
// once after loading or reloading a Store; it holds no reference to the
// Store's own edge slices, so later shortcut insertion during contraction
// does not invalidate it (contraction never removes base edges).
type Index struct {
	tree    rtree.RTreeG[segment]
	nodeLat []float64
	nodeLon []float64
}

// Build indexes every base (non-shortcut) edge of store using the supplied
// node coordinates. nodeLat/nodeLon must be indexed the same way as store's
// node ids.
func Build(store *chgraph.Store, nodeLat, nodeLon []float64) *Index {
	idx := &Index{nodeLat: nodeLat, nodeLon: nodeLon}

	for u := uint32(0); u < store.NumNodes; u++ {
		for _, e := range store.OutEdges[u] {
			if e.IsShortcut {
				continue
			}
			v := e.Target
			minLat := math.Min(nodeLat[u], nodeLat[v])
			maxLat := math.Max(nodeLat[u], nodeLat[v])
			minLon := math.Min(nodeLon[u], nodeLon[v])
			maxLon := math.Max(nodeLon[u], nodeLon[v])
			idx.tree.Insert(
				[2]float64{minLat, minLon},
				[2]float64{maxLat, maxLon},
				segment{u, v},
			)
		}
	}
	return idx
}

// searchRadiusDegrees is a generous latitude half-width around the query
// point, wide enough to contain maxSnapDistMeters. Snap widens the
// longitude half-width by 1/cos(lat) so it covers the same distance.
const searchRadiusDegrees = maxSnapDistMeters / 1000.0 / 100.0 * 1.5

// Snap finds the nearest base-graph road segment to (lat, lng).
func (idx *Index) Snap(lat, lng float64) (Result, error) {
	best := Result{Dist: math.Inf(1)}
	lngRadius := searchRadiusDegrees / math.Max(math.Cos(lat*math.Pi/180), 0.01)

	idx.tree.Search(
		[2]float64{lat - searchRadiusDegrees, lng - lngRadius},
		[2]float64{lat + searchRadiusDegrees, lng + lngRadius},
		func(min, max [2]float64, seg segment) bool {
			dist, ratio := geo.PointToSegmentDist(
				lat, lng,
				idx.nodeLat[seg.u], idx.nodeLon[seg.u],
				idx.nodeLat[seg.v], idx.nodeLon[seg.v],
			)
			if dist < best.Dist {
				best = Result{NodeU: seg.u, NodeV: seg.v, Ratio: ratio, Dist: dist}
			}
			return true
		},
	)

	if math.IsInf(best.Dist, 1) || best.Dist > maxSnapDistMeters {
		return Result{}, ErrPointTooFar
	}
	return best, nil
}
