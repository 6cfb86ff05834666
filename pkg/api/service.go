package api

import (
	"context"
	"errors"

	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/chquery"
	"github.com/tanjung/chroute/pkg/geo"
	"github.com/tanjung/chroute/pkg/snapindex"
)

// ErrNoRoute is returned when the two snapped endpoints have no connecting
// path in the preprocessed graph.
var ErrNoRoute = errors.New("api: no route found")

// LatLng is a plain lat/lng pair, independent of the wire JSON shape.
type LatLng struct {
	Lat float64
	Lng float64
}

// Hop is one unpacked edge of a route, carrying enough geometry for a host
// to render it.
type Hop struct {
	From           LatLng
	To             LatLng
	DistanceMeters float64
}

// RouteResult is the outcome of a successful route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Nodes               []uint32
	Hops                []Hop
}

// RouteService adapts a preprocessed chgraph.Store and its spatial index
// into the snap-then-query-then-render pipeline the HTTP layer needs.
type RouteService struct {
	store   *chgraph.Store
	index   *snapindex.Index
	nodeLat []float64
	nodeLon []float64
}

// NewRouteService wires a Store, its spatial snap index, and node
// coordinates (indexed the same way as the Store's node ids) into a
// RouteService.
func NewRouteService(store *chgraph.Store, index *snapindex.Index, nodeLat, nodeLon []float64) *RouteService {
	return &RouteService{store: store, index: index, nodeLat: nodeLat, nodeLon: nodeLon}
}

// Route snaps start and end onto the road network and returns the shortest
// path between their snapped nodes.
func (s *RouteService) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	startSnap, err := s.index.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := s.index.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}

	// The query itself is CPU-bound and ignores ctx; cancellation is
	// checked once, after snapping and before the query starts, matching
	// the engine's documented synchronous, non-cancelable contract.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nodes, distMeters := chquery.Query(s.store, nearestNode(startSnap), nearestNode(endSnap))
	if len(nodes) == 0 {
		return nil, ErrNoRoute
	}

	hops := make([]Hop, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		u, v := nodes[i], nodes[i+1]
		from := LatLng{Lat: s.nodeLat[u], Lng: s.nodeLon[u]}
		to := LatLng{Lat: s.nodeLat[v], Lng: s.nodeLon[v]}
		hops = append(hops, Hop{
			From:           from,
			To:             to,
			DistanceMeters: geo.Haversine(from.Lat, from.Lng, to.Lat, to.Lng),
		})
	}

	return &RouteResult{
		TotalDistanceMeters: distMeters,
		Nodes:               nodes,
		Hops:                hops,
	}, nil
}

// nearestNode picks whichever endpoint of a snapped segment the query
// point actually landed closer to. Routing from the midpoint of an edge is
// out of scope; the snapped node stands in for it.
func nearestNode(snap snapindex.Result) uint32 {
	if snap.Ratio < 0.5 {
		return snap.NodeU
	}
	return snap.NodeV
}
