// Command chbuild preprocesses an OSM PBF extract into a contracted graph
// binary ready for chserve or chquery.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/chbuild"
	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/component"
	"github.com/tanjung/chroute/pkg/hostosm"
	"github.com/tanjung/chroute/pkg/ordering"
)

func main() {
	input := flag.String("input", "", "path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "output graph binary path")
	coordsOutput := flag.String("coords-output", "", "output coordinates sidecar path (default: <output>.coords)")
	bbox := flag.String("bbox", "", "bounding box filter: minLat,minLng,maxLat,maxLng")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: chbuild --input <file.osm.pbf> [--output graph.bin] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}
	if *coordsOutput == "" {
		*coordsOutput = *output + ".coords"
	}

	var opts hostosm.Options
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			log.Fatal("invalid bbox", zap.Error(err))
		}
		opts.BBox = hostosm.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
	}

	start := time.Now()

	f, err := os.Open(*input)
	if err != nil {
		log.Fatal("open input file", zap.Error(err))
	}
	defer f.Close()

	log.Info("parsing osm extract")
	g, err := hostosm.Load(context.Background(), f, log, opts)
	if err != nil {
		log.Fatal("parse osm extract", zap.Error(err))
	}
	log.Info("parsed graph", zap.Uint32("nodes", g.Store.NumNodes))

	log.Info("extracting largest connected component")
	largest := component.Largest(g.Store)
	g.Store, g.NodeLat, g.NodeLon = component.Filter(g.Store, g.NodeLat, g.NodeLon, largest)
	log.Info("filtered to largest component", zap.Uint32("nodes", g.Store.NumNodes))

	log.Info("computing contraction order")
	order := ordering.Compute(g.Store)

	log.Info("contracting")
	stats := chbuild.Build(g.Store, order, log)

	log.Info("writing graph binary", zap.String("path", *output))
	if err := chgraph.WriteBinary(*output, g.Store); err != nil {
		log.Fatal("write graph binary", zap.Error(err))
	}
	if err := hostosm.SaveCoords(*coordsOutput, g.NodeLat, g.NodeLon); err != nil {
		log.Fatal("write coords", zap.Error(err))
	}

	info, _ := os.Stat(*output)
	log.Info("done",
		zap.Duration("elapsed", time.Since(start).Round(time.Second)),
		zap.Int("nodesContracted", stats.NodesContracted),
		zap.Int("shortcutsAdded", stats.ShortcutsAdded),
		zap.Int64("outputBytes", info.Size()),
	)
}
