package snap

import (
	"math"
	"sort"

	"github.com/uber/h3-go/v4"
	"golang.org/x/exp/slog"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/geo"
	"github.com/tspgen/streetgraph/pkg/projection"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
)

const (
	// resolution 9 cells are ~175m across, good street level buckets
	h3Resolution = 9
	maxGridRing  = 2
)

// EdgeResolver projects query points onto the nearest edge geometry instead
// of the nearest node, for networks that were not topologically simplified.
// Candidate edges are prefiltered through an H3 cell bucketing of their
// start coordinates.
type EdgeResolver struct {
	graph     *roadgraph.Graph
	projector *projection.Projector
	buckets   map[h3.Cell][]int32
}

func NewEdgeResolver(g *roadgraph.Graph, projector *projection.Projector) *EdgeResolver {
	e := &EdgeResolver{
		graph:     g,
		projector: projector,
		buckets:   make(map[h3.Cell][]int32),
	}
	for edgeID, edge := range g.Edges() {
		from, ok := g.NodeByID(edge.From)
		if !ok || !geo.ValidLatLon(from.Coord) {
			continue
		}
		cell := h3.LatLngToCell(h3.NewLatLng(from.Coord.Lat, from.Coord.Lon), h3Resolution)
		e.buckets[cell] = append(e.buckets[cell], int32(edgeID))
	}
	return e
}

// ResolveToEdge returns the minimum distance projection of the query onto
// nearby edge geometry, with the endpoints of the matched edge so the caller
// can splice a virtual node into a routing problem. When no segment
// projection succeeds the closest raw vertex among the candidate edges'
// endpoints wins instead.
func (e *EdgeResolver) ResolveToEdge(point datastructure.Coordinate) (datastructure.EdgeMatch, error) {
	query, err := e.projector.Project(point)
	if err != nil {
		return datastructure.EdgeMatch{}, err
	}

	candidates := e.candidateEdges(point)
	if len(candidates) == 0 {
		return datastructure.EdgeMatch{}, ErrNoCandidates
	}

	best := datastructure.EdgeMatch{Dist: math.Inf(1)}
	found := false
	for _, edgeID := range candidates {
		edge := e.graph.GetEdge(edgeID)
		poly := e.edgePolyline(edge)

		proj, dist, err := geo.ProjectPointToPolyline(query, poly)
		if err != nil {
			continue
		}
		if dist < best.Dist {
			best = datastructure.EdgeMatch{
				Proj:       proj,
				FromNodeID: edge.From,
				ToNodeID:   edge.To,
				Dist:       dist,
			}
			found = true
		}
	}

	if !found {
		return e.closestEndpoint(query, candidates)
	}
	return best, nil
}

// SnappedCoordinate maps an edge match back into geographic space by
// projecting the query onto the geodesic between the matched edge endpoints.
// Debug tooling for "show me where my point landed".
func (e *EdgeResolver) SnappedCoordinate(query datastructure.Coordinate,
	match datastructure.EdgeMatch) (datastructure.Coordinate, bool) {
	from, okFrom := e.graph.NodeByID(match.FromNodeID)
	to, okTo := e.graph.NodeByID(match.ToNodeID)
	if !okFrom || !okTo {
		return datastructure.Coordinate{}, false
	}
	return geo.ProjectPointToLineCoord(from.Coord, to.Coord, query), true
}

// candidateEdges grows the H3 disk around the query until a bucket is hit,
// falling back to every edge when the neighborhood stays empty.
func (e *EdgeResolver) candidateEdges(point datastructure.Coordinate) []int32 {
	origin := h3.LatLngToCell(h3.NewLatLng(point.Lat, point.Lon), h3Resolution)

	candidates := make([]int32, 0)
	for ring := 0; ring <= maxGridRing; ring++ {
		candidates = candidates[:0]
		for _, cell := range h3.GridDisk(origin, ring) {
			candidates = append(candidates, e.buckets[cell]...)
		}
		if len(candidates) > 0 {
			break
		}
	}

	if len(candidates) == 0 {
		slog.Warn("no edge bucket near query, scanning all edges",
			"lat", point.Lat, "lon", point.Lon)
		for edgeID := range e.graph.Edges() {
			candidates = append(candidates, int32(edgeID))
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates
}

func (e *EdgeResolver) edgePolyline(edge roadgraph.Edge) []datastructure.Point {
	if len(edge.Geometry) >= 2 {
		return edge.Geometry
	}
	from, okFrom := e.graph.NodeByID(edge.From)
	to, okTo := e.graph.NodeByID(edge.To)
	if !okFrom || !okTo {
		return nil
	}
	return []datastructure.Point{from.Loc, to.Loc}
}

func (e *EdgeResolver) closestEndpoint(query datastructure.Point,
	candidates []int32) (datastructure.EdgeMatch, error) {
	best := datastructure.EdgeMatch{Dist: math.Inf(1)}
	found := false
	for _, edgeID := range candidates {
		edge := e.graph.GetEdge(edgeID)
		for _, nodeID := range []int32{edge.From, edge.To} {
			node, ok := e.graph.NodeByID(nodeID)
			if !ok || !finite(node.Loc) {
				continue
			}
			dist := query.EuclideanDistance(node.Loc)
			if dist < best.Dist {
				best = datastructure.EdgeMatch{
					Proj:       node.Loc,
					FromNodeID: edge.From,
					ToNodeID:   edge.To,
					Dist:       dist,
				}
				found = true
			}
		}
	}
	if !found {
		return datastructure.EdgeMatch{}, ErrNoCandidates
	}
	slog.Info("no valid projection found, using closest endpoint", "dist", best.Dist)
	return best, nil
}
