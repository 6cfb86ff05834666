// Command chquery answers a single point-to-point query against a
// preprocessed graph binary and prints the result, for scripting and
// smoke-testing preprocessed extracts without standing up a server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tanjung/chroute/pkg/chgraph"
	"github.com/tanjung/chroute/pkg/chquery"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "path to preprocessed graph binary")
	source := flag.Uint("source", 0, "source node id")
	target := flag.Uint("target", 0, "target node id")
	flag.Parse()

	store, err := chgraph.ReadBinary(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load graph: %v\n", err)
		os.Exit(1)
	}

	path, dist := chquery.Query(store, uint32(*source), uint32(*target))
	if len(path) == 0 {
		fmt.Println("no route found")
		os.Exit(1)
	}

	fmt.Printf("distance: %.3f\n", dist)
	fmt.Printf("nodes (%d): %v\n", len(path), path)
}
