package roadgraph

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// PathPolyline encodes the geographic track of a node id path as a Google
// encoded polyline, for the visualization/export collaborators.
func (g *Graph) PathPolyline(path []int32) ([]byte, error) {
	coords := make([][]float64, 0, len(path))
	for _, id := range path {
		node, ok := g.NodeByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEndpoint, id)
		}
		coords = append(coords, []float64{node.Coord.Lat, node.Coord.Lon})
	}
	return polyline.EncodeCoords(coords), nil
}
