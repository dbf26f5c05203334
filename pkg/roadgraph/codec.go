package roadgraph

import (
	"errors"
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

var ErrCorruptSnapshot = errors.New("corrupt road graph snapshot")

// graphSnapshot is the wire shape of a built graph. The adjacency and node
// index are rebuilt on load, the SCC is persisted so loading never repeats
// the Kosaraju pass.
type graphSnapshot struct {
	CRS   string
	Nodes []Node
	Edges []Edge
	SCC   []int32
}

// Marshal serializes a built graph so a prepared network can be reused
// across runs without going back to the acquisition side.
func Marshal(g *Graph) ([]byte, error) {
	snapshot := graphSnapshot{
		CRS:   g.crs,
		Nodes: g.nodes,
		Edges: g.edges,
		SCC:   make([]int32, 0, len(g.largestSCC)),
	}
	for _, node := range g.nodes {
		if _, ok := g.largestSCC[node.ID]; ok {
			snapshot.SCC = append(snapshot.SCC, node.ID)
		}
	}
	return binary.Marshal(&snapshot)
}

func Unmarshal(data []byte) (*Graph, error) {
	var snapshot graphSnapshot
	if err := binary.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if len(snapshot.Nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		nodes:      snapshot.Nodes,
		nodeIdx:    make(map[int32]int, len(snapshot.Nodes)),
		edges:      snapshot.Edges,
		outEdges:   make([][]int32, len(snapshot.Nodes)),
		crs:        snapshot.CRS,
		largestSCC: make(map[int32]struct{}, len(snapshot.SCC)),
	}
	for i, node := range g.nodes {
		g.nodeIdx[node.ID] = i
	}
	for edgeID, edge := range g.edges {
		fromIdx, ok := g.nodeIdx[edge.From]
		if !ok {
			return nil, fmt.Errorf("%w: edge references unknown node %d", ErrCorruptSnapshot, edge.From)
		}
		if _, ok := g.nodeIdx[edge.To]; !ok {
			return nil, fmt.Errorf("%w: edge references unknown node %d", ErrCorruptSnapshot, edge.To)
		}
		g.outEdges[fromIdx] = append(g.outEdges[fromIdx], int32(edgeID))
	}
	return g, nil
}

// MarshalCompressed is Marshal plus zstd, for city scale networks where the
// raw snapshot gets big.
func MarshalCompressed(g *Graph) ([]byte, error) {
	raw, err := Marshal(g)
	if err != nil {
		return nil, err
	}
	var compressed []byte
	compressed, err = zstd.Compress(compressed, raw)
	if err != nil {
		return nil, err
	}
	return compressed, nil
}

func UnmarshalCompressed(data []byte) (*Graph, error) {
	var raw []byte
	raw, err := zstd.Decompress(raw, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return Unmarshal(raw)
}
