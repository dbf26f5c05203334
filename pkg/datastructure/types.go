package datastructure

import (
	"math"
)

// Coordinate is a geographic WGS84 position supplied by the caller.
type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

// Point is a position in the projected planar CRS, in meters.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// EuclideanDistance between two planar points, in meters.
func (p Point) EuclideanDistance(other Point) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// NodeMatch is the result of snapping one query coordinate onto the road
// network: the nearest node, its planar location, and the snap distance.
type NodeMatch struct {
	NodeID int32
	Loc    Point
	Dist   float64
}

func NewNodeMatch(nodeID int32, loc Point, dist float64) NodeMatch {
	return NodeMatch{NodeID: nodeID, Loc: loc, Dist: dist}
}

// EdgeMatch is the result of projecting a query coordinate onto edge
// geometry: the projected point plus the endpoints of the edge it lies
// between, so a caller can splice a virtual node into a routing problem.
type EdgeMatch struct {
	Proj       Point
	FromNodeID int32
	ToNodeID   int32
	Dist       float64
}

// PathResult is a shortest path between two road network nodes. An
// unreachable pair is represented as Cost = +Inf with an empty Nodes slice,
// never as an error.
type PathResult struct {
	Nodes []int32
	Cost  float64
}

func NewPathResult(nodes []int32, cost float64) PathResult {
	return PathResult{Nodes: nodes, Cost: cost}
}

func NoPathResult() PathResult {
	return PathResult{Nodes: []int32{}, Cost: math.Inf(1)}
}

// Reachable reports whether the search actually produced a path.
func (p PathResult) Reachable() bool {
	return !math.IsInf(p.Cost, 1)
}
