package hostosm

import (
	"math"
	"testing"

	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/chbuild"
	"github.com/tanjung/chroute/pkg/chquery"
	"github.com/tanjung/chroute/pkg/geo"
)

func TestClassifyWay(t *testing.T) {
	tests := []struct {
		name            string
		tags            osm.Tags
		wantAccessible  bool
		wantForward     bool
		wantBackward    bool
	}{
		{
			name:           "residential road",
			tags:           osm.Tags{{Key: "highway", Value: "residential"}},
			wantAccessible: true, wantForward: true, wantBackward: true,
		},
		{
			name:           "motorway implies oneway",
			tags:           osm.Tags{{Key: "highway", Value: "motorway"}},
			wantAccessible: true, wantForward: true, wantBackward: false,
		},
		{
			name:           "motorway_link implies oneway",
			tags:           osm.Tags{{Key: "highway", Value: "motorway_link"}},
			wantAccessible: true, wantForward: true, wantBackward: false,
		},
		{
			name: "roundabout implies oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantAccessible: true, wantForward: true, wantBackward: false,
		},
		{
			name:           "footway is not drivable",
			tags:           osm.Tags{{Key: "highway", Value: "footway"}},
			wantAccessible: false,
		},
		{
			name:           "cycleway is not drivable",
			tags:           osm.Tags{{Key: "highway", Value: "cycleway"}},
			wantAccessible: false,
		},
		{
			name:           "no highway tag",
			tags:           osm.Tags{{Key: "name", Value: "Some Street"}},
			wantAccessible: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			wantAccessible: false,
		},
		{
			name: "access=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "no"},
			},
			wantAccessible: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			wantAccessible: false,
		},
		{
			name: "area=yes (pedestrian plaza)",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			wantAccessible: false,
		},
		{
			name: "explicit oneway=yes",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantAccessible: true, wantForward: true, wantBackward: false,
		},
		{
			name: "explicit oneway=-1 reverses direction",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantAccessible: true, wantForward: false, wantBackward: true,
		},
		{
			name: "oneway=no overrides the motorway-implied restriction",
			tags: osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			wantAccessible: true, wantForward: true, wantBackward: true,
		},
		{
			name: "oneway=reversible yields no usable direction at all",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantAccessible: false, wantForward: false, wantBackward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessible, fwd, bwd := classifyWay(tt.tags)
			if accessible != tt.wantAccessible || fwd != tt.wantForward || bwd != tt.wantBackward {
				t.Errorf("classifyWay() = (%v, %v, %v), want (%v, %v, %v)",
					accessible, fwd, bwd, tt.wantAccessible, tt.wantForward, tt.wantBackward)
			}
		})
	}
}

// TestAssembleScalesEdgeWeightsForQuery is the regression the EdgeWeight
// fixed-point scaling bug needed: it drives assemble (the one place a real
// host computes CH edge weights from coordinates) and checks that
// chquery.Query reports back the same real-world distance it was given,
// not one scaled by the mismatch between AddEdge's expected units and
// geo.EdgeWeight's output.
func TestAssembleScalesEdgeWeightsForQuery(t *testing.T) {
	const fromLat, fromLon = 1.3000, 103.8000
	const toLat, toLon = 1.3000, 103.8100 // a few hundred meters east

	ways := []wayInfo{
		{NodeIDs: []osm.NodeID{1, 2}, Forward: true, Backward: false},
	}
	nodeLat := map[osm.NodeID]float64{1: fromLat, 2: toLat}
	nodeLon := map[osm.NodeID]float64{1: fromLon, 2: toLon}

	graph, err := assemble(ways, nodeLat, nodeLon, BBox{}, false, zap.NewNop())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	// Query only relaxes upward edges, so the two nodes need ranks before
	// they're reachable at all; a trivial identity order contracts both
	// without inserting any shortcut, which is enough to assign them.
	chbuild.Build(graph.Store, []uint32{0, 1}, zap.NewNop())

	wantMeters := geo.Haversine(fromLat, fromLon, toLat, toLon)

	_, gotMeters := chquery.Query(graph.Store, 0, 1)
	if gotMeters == 0 {
		t.Fatal("Query returned distance 0, want a real distance")
	}

	diffPercent := math.Abs(gotMeters-wantMeters) / wantMeters * 100
	if diffPercent > 0.01 {
		t.Errorf("Query distance = %.3fm, want ~%.3fm (off by %.4f%%, a factor-of-1000 unit "+
			"mismatch between geo.EdgeWeight and chquery.Query would show up here)",
			gotMeters, wantMeters, diffPercent)
	}
}

func TestAssembleSkipsEdgesMissingCoordinates(t *testing.T) {
	ways := []wayInfo{
		{NodeIDs: []osm.NodeID{1, 2}, Forward: true, Backward: true},
	}
	nodeLat := map[osm.NodeID]float64{1: 1.0} // node 2's coordinates never arrived
	nodeLon := map[osm.NodeID]float64{1: 103.0}

	graph, err := assemble(ways, nodeLat, nodeLon, BBox{}, false, zap.NewNop())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, edges := range graph.Store.OutEdges {
		if len(edges) != 0 {
			t.Fatalf("expected no edges to be inserted, got %v", edges)
		}
	}
}

func TestAssembleAppliesBBoxFilter(t *testing.T) {
	ways := []wayInfo{
		{NodeIDs: []osm.NodeID{1, 2}, Forward: true, Backward: true},
	}
	nodeLat := map[osm.NodeID]float64{1: 1.0, 2: 50.0} // node 2 well outside the box
	nodeLon := map[osm.NodeID]float64{1: 103.0, 2: 103.0}

	bbox := BBox{MinLat: 0, MaxLat: 2, MinLng: 102, MaxLng: 104}
	graph, err := assemble(ways, nodeLat, nodeLon, bbox, true, zap.NewNop())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, edges := range graph.Store.OutEdges {
		if len(edges) != 0 {
			t.Fatalf("expected the out-of-box edge to be filtered, got %v", edges)
		}
	}
}
