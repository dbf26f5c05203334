package datastructure

import (
	"errors"
	"math"
)

var (
	ErrSelfLoop      = errors.New("distance graph must not contain self loops")
	ErrInfiniteEdge  = errors.New("distance graph must not contain infinite weight edges")
	ErrNodeOutOfSpan = errors.New("edge endpoint outside node range")
)

// DistanceNode is one input point of interest inside the output graph. It
// keeps the original geographic coordinate and the planar position so the
// visualization collaborator can draw both.
type DistanceNode struct {
	Label string
	Coord Coordinate
	Loc   Point
}

func NewDistanceNode(label string, coord Coordinate, loc Point) DistanceNode {
	return DistanceNode{Label: label, Coord: coord, Loc: loc}
}

// DistanceEdge is the travel distance from one point of interest to another,
// together with the road network node sequence realizing it.
type DistanceEdge struct {
	From   int
	To     int
	Weight float64
	Path   []int32
}

// DistanceGraph is the complete weighted directed graph over the input
// points, the final product consumed by a TSP/scheduling solver. Pairs with
// no finite-cost path carry no edge at all.
type DistanceGraph struct {
	Nodes []DistanceNode
	Edges []DistanceEdge

	edgeIdx map[[2]int]int
}

func NewDistanceGraph(nodes []DistanceNode) *DistanceGraph {
	return &DistanceGraph{
		Nodes:   nodes,
		Edges:   make([]DistanceEdge, 0),
		edgeIdx: make(map[[2]int]int),
	}
}

func (g *DistanceGraph) AddEdge(from, to int, weight float64, path []int32) error {
	if from == to {
		return ErrSelfLoop
	}
	if math.IsInf(weight, 0) || math.IsNaN(weight) {
		return ErrInfiniteEdge
	}
	if from < 0 || from >= len(g.Nodes) || to < 0 || to >= len(g.Nodes) {
		return ErrNodeOutOfSpan
	}
	g.edgeIdx[[2]int{from, to}] = len(g.Edges)
	g.Edges = append(g.Edges, DistanceEdge{From: from, To: to, Weight: weight, Path: path})
	return nil
}

// Edge returns the directed edge from -> to, if a finite-cost path exists.
func (g *DistanceGraph) Edge(from, to int) (DistanceEdge, bool) {
	idx, ok := g.edgeIdx[[2]int{from, to}]
	if !ok {
		return DistanceEdge{}, false
	}
	return g.Edges[idx], true
}

// Weight returns the travel distance from -> to in meters.
func (g *DistanceGraph) Weight(from, to int) (float64, bool) {
	edge, ok := g.Edge(from, to)
	if !ok {
		return 0, false
	}
	return edge.Weight, true
}

func (g *DistanceGraph) NumNodes() int {
	return len(g.Nodes)
}
