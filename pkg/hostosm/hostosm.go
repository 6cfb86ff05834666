// Package hostosm is a reference host adapter: it parses OpenStreetMap PBF
// extracts into a chgraph.Store, the way a real caller of the core engine
// would build its input graph before preprocessing. It is not part of the
// engine itself; engines are storage- and source-agnostic by design.
package hostosm

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/geo"
)

// highwayClass describes how a highway tag value behaves for car routing:
// whether it's drivable at all, and whether its road type alone (before any
// explicit oneway tag is considered) implies traffic only flows one way.
type highwayClass struct {
	drivable      bool
	impliedOneway bool
}

// highwayClasses buckets every highway tag value this engine treats as
// car-routable. Anything absent is rejected outright — footways, cycleways,
// paths, and steps all simply have no entry.
var highwayClasses = map[string]highwayClass{
	"motorway":       {drivable: true, impliedOneway: true},
	"motorway_link":  {drivable: true, impliedOneway: true},
	"trunk":          {drivable: true},
	"trunk_link":     {drivable: true},
	"primary":        {drivable: true},
	"primary_link":   {drivable: true},
	"secondary":      {drivable: true},
	"secondary_link": {drivable: true},
	"tertiary":       {drivable: true},
	"tertiary_link":  {drivable: true},
	"unclassified":   {drivable: true},
	"residential":    {drivable: true},
	"living_street":  {drivable: true},
	"service":        {drivable: true},
}

// classifyWay decides whether a way is usable by a car and in which
// directions, in one pass over its tags. accessible is false whenever
// forward and backward would both end up false anyway, so callers can skip
// a way on accessible alone without also checking the direction flags.
func classifyWay(tags osm.Tags) (accessible, forward, backward bool) {
	class, known := highwayClasses[tags.Find("highway")]
	if !known {
		return false, false, false
	}
	if tags.Find("area") == "yes" {
		return false, false, false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false, false, false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false, false, false
	}

	forward, backward = true, true
	if class.impliedOneway || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		forward, backward = false, false
	}
	return forward || backward, forward, backward
}

type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox restricts parsing to a geographic window. The zero value means no
// filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b BBox) isZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

func (b BBox) contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Options configures Load.
type Options struct {
	BBox BBox
}

// Graph is a loaded base graph ready for a contraction-order heuristic and
// chbuild.Build: a chgraph.Store plus the coordinate lookup snapindex and
// the API layer need for spatial queries and response geometry.
type Graph struct {
	Store   *chgraph.Store
	NodeLat []float64
	NodeLon []float64
}

// Load reads an OSM PBF extract and returns a car-routable Graph. rs is
// read twice — once to learn which ways are drivable and which nodes they
// reference, once to collect those nodes' coordinates — so it must support
// seeking back to the start.
func Load(ctx context.Context, rs io.ReadSeeker, log *zap.Logger, opts ...Options) (*Graph, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if log == nil {
		log = zap.NewNop()
	}
	useBBox := !opt.BBox.isZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}
		accessible, fwd, bwd := classifyWay(w.Tags)
		if !accessible {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Forward: fwd, Backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("hostosm: pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Info("osm pass 1 complete", zap.Int("ways", len(ways)), zap.Int("referencedNodes", len(referencedNodes)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("hostosm: seek for pass 2: %w", err)
	}

	nodeLatByID := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLonByID := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLatByID[n.ID] = n.Lat
		nodeLonByID[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("hostosm: pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Info("osm pass 2 complete", zap.Int("coordinates", len(nodeLatByID)))

	return assemble(ways, nodeLatByID, nodeLonByID, opt.BBox, useBBox, log)
}

type directedEdge struct {
	from, to uint32
	weight   uint32
}

// assemble remaps osm.NodeID space down to a compact [0, n) index space and
// produces a chgraph.Store, mirroring the graph-builder remap-then-insert
// pattern used throughout the engine's own preprocessing pipeline.
func assemble(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, bbox BBox, useBBox bool, log *zap.Logger) (*Graph, error) {
	nodeIndex := make(map[osm.NodeID]uint32)
	var orderedIDs []osm.NodeID

	indexOf := func(id osm.NodeID) uint32 {
		if idx, ok := nodeIndex[id]; ok {
			return idx
		}
		idx := uint32(len(orderedIDs))
		nodeIndex[id] = idx
		orderedIDs = append(orderedIDs, id)
		return idx
	}

	var directed []directedEdge
	var skipped, bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]
			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if useBBox && (!bbox.contains(fromLat, fromLon) || !bbox.contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			weight := geo.EdgeWeight(geo.Haversine(fromLat, fromLon, toLat, toLon))
			from, to := indexOf(fromID), indexOf(toID)

			if w.Forward {
				directed = append(directed, directedEdge{from, to, weight})
			}
			if w.Backward {
				directed = append(directed, directedEdge{to, from, weight})
			}
		}
	}

	if skipped > 0 {
		log.Warn("edges skipped for missing coordinates", zap.Int("count", skipped))
	}
	if bboxFiltered > 0 {
		log.Info("edges filtered outside bounding box", zap.Int("count", bboxFiltered))
	}

	// Sorting by (from, to) gives deterministic adjacency ordering, which
	// keeps repeated builds of the same extract byte-identical.
	sort.Slice(directed, func(i, j int) bool {
		if directed[i].from != directed[j].from {
			return directed[i].from < directed[j].from
		}
		return directed[i].to < directed[j].to
	})

	store := chgraph.New(uint32(len(orderedIDs)))
	for _, e := range directed {
		if err := store.AddEdge(e.from, e.to, e.weight); err != nil {
			return nil, fmt.Errorf("hostosm: %w", err)
		}
	}

	lat := make([]float64, len(orderedIDs))
	lon := make([]float64, len(orderedIDs))
	for id, idx := range nodeIndex {
		lat[idx] = nodeLat[id]
		lon[idx] = nodeLon[id]
	}

	log.Info("osm graph assembled", zap.Int("nodes", len(orderedIDs)), zap.Int("edges", len(directed)))
	return &Graph{Store: store, NodeLat: lat, NodeLon: lon}, nil
}

// coordSnapshot is the on-disk shape for SaveCoords/LoadCoords.
type coordSnapshot struct {
	Lat []float64
	Lon []float64
}

// SaveCoords writes node coordinates to path, indexed the same way as the
// Store they were loaded alongside. This is host-side bookkeeping, not part
// of the engine's own binary format: the engine is coordinate-agnostic, so
// chgraph.WriteBinary has no place to carry it.
func SaveCoords(path string, lat, lon []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("hostosm: create coords file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(coordSnapshot{Lat: lat, Lon: lon}); err != nil {
		return fmt.Errorf("hostosm: encode coords: %w", err)
	}
	return nil
}

// LoadCoords reads coordinates written by SaveCoords.
func LoadCoords(path string) (lat, lon []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("hostosm: open coords file: %w", err)
	}
	defer f.Close()

	var snap coordSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("hostosm: decode coords: %w", err)
	}
	return snap.Lat, snap.Lon, nil
}

