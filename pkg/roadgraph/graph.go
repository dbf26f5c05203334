// Package roadgraph holds the road network contract consumed by the distance
// engine: nodes with planar coordinates, directed weighted edges, the target
// CRS and the precomputed largest strongly connected component. The graph is
// built once by the acquisition side and is read only afterwards, so
// concurrent readers need no locking.
package roadgraph

import (
	"github.com/tspgen/streetgraph/pkg/datastructure"
)

type Node struct {
	ID    int32
	Coord datastructure.Coordinate
	Loc   datastructure.Point
}

type Edge struct {
	From     int32
	To       int32
	Length   float64
	OneWay   bool
	Geometry []datastructure.Point
}

type Graph struct {
	nodes    []Node
	nodeIdx  map[int32]int
	edges    []Edge
	outEdges [][]int32

	crs        string
	largestSCC map[int32]struct{}
}

// Nodes returns every node in stable insertion order. The slice is owned by
// the graph, callers must not mutate it.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

func (g *Graph) NodeByID(id int32) (Node, bool) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// GetOutEdgeIDs returns the edge ids leaving the node.
func (g *Graph) GetOutEdgeIDs(nodeID int32) []int32 {
	idx, ok := g.nodeIdx[nodeID]
	if !ok {
		return nil
	}
	return g.outEdges[idx]
}

func (g *Graph) GetEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

// Edges returns every directed edge, reverse directions of two way streets
// included.
func (g *Graph) Edges() []Edge {
	return g.edges
}

func (g *Graph) CRS() string {
	return g.crs
}

// InLargestSCC reports whether the node belongs to the largest strongly
// connected component. Only such nodes are valid shortest path endpoints.
func (g *Graph) InLargestSCC(nodeID int32) bool {
	_, ok := g.largestSCC[nodeID]
	return ok
}

func (g *Graph) LargestSCCSize() int {
	return len(g.largestSCC)
}
