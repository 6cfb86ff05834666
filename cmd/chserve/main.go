// Command chserve serves a preprocessed graph over HTTP for point-to-point
// route queries.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/api"
	"github.com/tanjung/chroute/pkg/chbuild"
	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/hostosm"
	"github.com/tanjung/chroute/pkg/snapindex"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "path to preprocessed graph binary")
	coordsPath := flag.String("coords", "", "path to coordinates sidecar (default: <graph>.coords)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	if *coordsPath == "" {
		*coordsPath = *graphPath + ".coords"
	}

	log.Info("loading graph", zap.String("path", *graphPath))
	store, err := chgraph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatal("load graph", zap.Error(err))
	}

	lat, lon, err := hostosm.LoadCoords(*coordsPath)
	if err != nil {
		log.Fatal("load coords", zap.Error(err))
	}

	log.Info("building spatial index")
	index := snapindex.Build(store, lat, lon)

	service := api.NewRouteService(store, index, lat, lon)
	handlers := api.NewHandlers(service, store.NumNodes, chbuild.Stats{}, log)

	cfg := api.LoadConfig()
	cfg.Addr = *addr

	log.Info("ready", zap.Uint32("nodes", store.NumNodes))
	if err := api.Run(context.Background(), cfg, handlers, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
