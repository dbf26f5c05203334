package snap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
)

func TestResolveToEdgeProjectsOntoGeometry(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, 50.8460, 4.3520))
	require.NoError(t, b.AddNode(2, 50.8480, 4.3520))
	// straight north-south street
	b.AddEdge(1, 2, 222, false, []datastructure.Coordinate{
		{Lat: 50.8460, Lon: 4.3520},
		{Lat: 50.8480, Lon: 4.3520},
	})
	g, err := b.Build()
	require.NoError(t, err)

	e := NewEdgeResolver(g, projector)

	// query sits beside the middle of the street, slightly east
	query := datastructure.NewCoordinate(50.8470, 4.3524)
	match, err := e.ResolveToEdge(query)
	require.NoError(t, err)

	node1, _ := g.NodeByID(1)
	node2, _ := g.NodeByID(2)
	assert.ElementsMatch(t, []int32{1, 2}, []int32{match.FromNodeID, match.ToNodeID})

	// the projection must land strictly between the endpoints and be much
	// closer than either endpoint
	queryLoc, err := projector.Project(query)
	require.NoError(t, err)
	assert.Less(t, match.Dist, queryLoc.EuclideanDistance(node1.Loc))
	assert.Less(t, match.Dist, queryLoc.EuclideanDistance(node2.Loc))
	assert.Greater(t, match.Proj.Y, node1.Loc.Y)
	assert.Less(t, match.Proj.Y, node2.Loc.Y)
	// ~4.3524 vs 4.3520 is roughly 28m at this latitude
	assert.InDelta(t, 28, match.Dist, 3)
}

func TestResolveToEdgePointOnStreetHasZeroDistance(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, 50.8460, 4.3520))
	require.NoError(t, b.AddNode(2, 50.8480, 4.3520))
	b.AddEdge(1, 2, 222, true, nil)
	g, err := b.Build()
	require.NoError(t, err)

	e := NewEdgeResolver(g, projector)
	match, err := e.ResolveToEdge(datastructure.NewCoordinate(50.8460, 4.3520))
	require.NoError(t, err)
	assert.InDelta(t, 0, match.Dist, 1e-9)
}

func TestResolveToEdgeFarQueryFallsBackToFullScan(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, 50.8460, 4.3520))
	require.NoError(t, b.AddNode(2, 50.8480, 4.3520))
	b.AddEdge(1, 2, 222, true, nil)
	g, err := b.Build()
	require.NoError(t, err)

	e := NewEdgeResolver(g, projector)
	// Antwerp is far outside any H3 ring around the Brussels street
	match, err := e.ResolveToEdge(datastructure.NewCoordinate(51.2194, 4.4025))
	require.NoError(t, err)
	assert.Equal(t, int32(1), match.FromNodeID)
	assert.Equal(t, int32(2), match.ToNodeID)
}

func TestSnappedCoordinate(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, 50.8460, 4.3520))
	require.NoError(t, b.AddNode(2, 50.8480, 4.3520))
	b.AddEdge(1, 2, 222, true, nil)
	g, err := b.Build()
	require.NoError(t, err)

	e := NewEdgeResolver(g, projector)
	query := datastructure.NewCoordinate(50.8470, 4.3524)
	match, err := e.ResolveToEdge(query)
	require.NoError(t, err)

	snapped, ok := e.SnappedCoordinate(query, match)
	require.True(t, ok)
	// snapped point stays on the street meridian at the query latitude
	assert.InDelta(t, 4.3520, snapped.Lon, 1e-3)
	assert.InDelta(t, 50.8470, snapped.Lat, 1e-3)

	_, ok = e.SnappedCoordinate(query, datastructure.EdgeMatch{FromNodeID: 99, ToNodeID: 98})
	assert.False(t, ok)
}
