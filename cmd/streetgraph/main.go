package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/exp/slog"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/matrix"
	"github.com/tspgen/streetgraph/pkg/projection"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
	"github.com/tspgen/streetgraph/pkg/snap"
	"github.com/tspgen/streetgraph/pkg/tsplib"
)

var (
	graphFile  = flag.String("graph", "network.graph", "road network snapshot file")
	pointsFile = flag.String("points", "points.csv", "csv of lat,lon[,label] rows")
	outFile    = flag.String("o", "out.atsp", "output tsplib file")
	name       = flag.String("name", "streetgraph", "tsplib instance name")
	format     = flag.String("format", "explicit", "tsplib variant: explicit or coords")
	workers    = flag.Int("workers", 8, "pair solver workers")
	chunkSize  = flag.Int("chunk", 256, "pairs per processing chunk")
	useRtree   = flag.Bool("rtree", false, "snap with an r-tree index instead of brute force")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("streetgraph failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	g, err := loadGraph(*graphFile)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	slog.Info("road network loaded", "nodes", g.NumNodes(), "edges", g.NumEdges(),
		"crs", g.CRS(), "scc_size", g.LargestSCCSize())

	projector, err := projection.NewProjectorFromCRS(g.CRS())
	if err != nil {
		return err
	}

	points, labels, err := loadPoints(*pointsFile)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	slog.Info("points loaded", "count", len(points))

	opts := []matrix.Option{
		matrix.WithWorkers(*workers),
		matrix.WithChunkSize(*chunkSize),
	}
	if *useRtree {
		opts = append(opts,
			matrix.WithResolver(snap.NewResolver(g, projector, snap.WithRtreeIndex())))
	}

	builder := matrix.NewBuilder(g, projector, opts...)
	graph, stats, err := builder.Build(ctx, matrix.BuildRequest{Points: points, Labels: labels})
	if err != nil {
		return err
	}
	slog.Info("distance matrix built", "pairs", stats.Pairs,
		"cache_hits", stats.CacheHits, "unreachable", stats.UnreachablePairs,
		"no_path", stats.NoPathPairs)

	out, err := os.Create(*outFile)
	if err != nil {
		return err
	}
	defer out.Close()

	exporter := tsplib.NewExporter(*name)
	switch *format {
	case "explicit":
		err = exporter.WriteExplicit(out, graph)
	case "coords":
		err = exporter.WriteNodeCoords(out, graph)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	slog.Info("tsplib instance written", "file", *outFile, "format", *format)
	return nil
}

func loadGraph(path string) (*roadgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// snapshots are usually zstd compressed, plain ones still load
	if g, err := roadgraph.UnmarshalCompressed(data); err == nil {
		return g, nil
	}
	return roadgraph.Unmarshal(data)
}

func loadPoints(path string) ([]datastructure.Coordinate, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var points []datastructure.Coordinate
	var labels []string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("line %d: want lat,lon[,label]", line)
		}
		lat, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad latitude %q", line, record[0])
		}
		lon, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad longitude %q", line, record[1])
		}
		points = append(points, datastructure.NewCoordinate(lat, lon))
		if len(record) > 2 {
			labels = append(labels, record[2])
		} else {
			labels = append(labels, fmt.Sprintf("Point %d", line))
		}
	}
	return points, labels, nil
}
