package roadgraph

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slog"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/geo"
	"github.com/tspgen/streetgraph/pkg/projection"
)

var (
	ErrEmptyGraph      = errors.New("road graph has no nodes")
	ErrDuplicateNode   = errors.New("duplicate node id")
	ErrUnknownEndpoint = errors.New("edge endpoint not present in graph")
	ErrBadEdgeLength   = errors.New("edge length must be finite and non-negative")
)

type edgeInput struct {
	from     int32
	to       int32
	length   float64
	oneWay   bool
	geometry []datastructure.Coordinate
}

// Builder assembles a road network from raw geographic nodes and directed
// edges, the way the acquisition collaborator hands them over. Build projects
// everything into the builder's planar CRS, materializes the reverse
// direction of two way edges and extracts the largest strongly connected
// component.
type Builder struct {
	projector *projection.Projector
	nodes     []Node
	nodeIDs   map[int32]struct{}
	edges     []edgeInput
}

func NewBuilder(projector *projection.Projector) *Builder {
	return &Builder{
		projector: projector,
		nodes:     make([]Node, 0),
		nodeIDs:   make(map[int32]struct{}),
		edges:     make([]edgeInput, 0),
	}
}

func (b *Builder) AddNode(id int32, lat, lon float64) error {
	if _, ok := b.nodeIDs[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	b.nodeIDs[id] = struct{}{}
	b.nodes = append(b.nodes, Node{ID: id, Coord: datastructure.NewCoordinate(lat, lon)})
	return nil
}

// AddEdge registers a directed edge. When oneWay is false the reverse
// direction is materialized during Build; callers must not add both
// directions themselves in that case.
func (b *Builder) AddEdge(from, to int32, lengthMeters float64, oneWay bool,
	geometry []datastructure.Coordinate) {
	b.edges = append(b.edges, edgeInput{
		from:     from,
		to:       to,
		length:   lengthMeters,
		oneWay:   oneWay,
		geometry: geometry,
	})
}

func (b *Builder) Build() (*Graph, error) {
	if len(b.nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		nodes:   make([]Node, len(b.nodes)),
		nodeIdx: make(map[int32]int, len(b.nodes)),
		edges:   make([]Edge, 0, len(b.edges)),
		crs:     b.projector.CRS(),
	}

	for i, node := range b.nodes {
		projected := node
		if geo.ValidLatLon(node.Coord) {
			loc, err := b.projector.Project(node.Coord)
			if err != nil {
				return nil, err
			}
			projected.Loc = loc
		} else {
			// kept in the graph but never a snap candidate
			projected.Loc = datastructure.NewPoint(math.NaN(), math.NaN())
		}
		g.nodes[i] = projected
		g.nodeIdx[node.ID] = i
	}

	g.outEdges = make([][]int32, len(g.nodes))

	for _, in := range b.edges {
		if _, ok := g.nodeIdx[in.from]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEndpoint, in.from)
		}
		if _, ok := g.nodeIdx[in.to]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEndpoint, in.to)
		}
		if math.IsNaN(in.length) || math.IsInf(in.length, 0) || in.length < 0 {
			return nil, fmt.Errorf("%w: %d -> %d length %f", ErrBadEdgeLength, in.from, in.to, in.length)
		}

		geometry := b.projectGeometry(in.geometry)
		b.appendEdge(g, Edge{From: in.from, To: in.to, Length: in.length, OneWay: in.oneWay, Geometry: geometry})
		if !in.oneWay {
			b.appendEdge(g, Edge{From: in.to, To: in.from, Length: in.length, OneWay: in.oneWay,
				Geometry: reverseGeometry(geometry)})
		}
	}

	g.largestSCC = largestSCC(g)
	slog.Info("road graph built", "nodes", g.NumNodes(), "edges", g.NumEdges(),
		"largest_scc", g.LargestSCCSize(), "crs", g.crs)
	return g, nil
}

func (b *Builder) appendEdge(g *Graph, edge Edge) {
	edgeID := int32(len(g.edges))
	g.edges = append(g.edges, edge)
	fromIdx := g.nodeIdx[edge.From]
	g.outEdges[fromIdx] = append(g.outEdges[fromIdx], edgeID)
}

// projectGeometry converts an edge polyline into the planar CRS. A polyline
// containing an invalid vertex is dropped entirely, snapping then falls back
// to the edge endpoints.
func (b *Builder) projectGeometry(geometry []datastructure.Coordinate) []datastructure.Point {
	if len(geometry) == 0 {
		return nil
	}
	projected := make([]datastructure.Point, len(geometry))
	for i, c := range geometry {
		if !geo.ValidLatLon(c) {
			slog.Warn("dropping edge geometry with invalid vertex", "lat", c.Lat, "lon", c.Lon)
			return nil
		}
		loc, err := b.projector.Project(c)
		if err != nil {
			slog.Warn("dropping edge geometry outside projection domain", "lat", c.Lat, "lon", c.Lon)
			return nil
		}
		projected[i] = loc
	}
	return projected
}

func reverseGeometry(geometry []datastructure.Point) []datastructure.Point {
	if geometry == nil {
		return nil
	}
	reversed := make([]datastructure.Point, len(geometry))
	for i, p := range geometry {
		reversed[len(geometry)-1-i] = p
	}
	return reversed
}
