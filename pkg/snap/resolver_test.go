package snap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/projection"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
)

func testProjector(t *testing.T) *projection.Projector {
	t.Helper()
	p, err := projection.NewProjector(31, false)
	require.NoError(t, err)
	return p
}

func gridGraph(t *testing.T, projector *projection.Projector) *roadgraph.Graph {
	t.Helper()
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, 50.8460, 4.3520))
	require.NoError(t, b.AddNode(2, 50.8470, 4.3530))
	require.NoError(t, b.AddNode(3, 50.8480, 4.3540))
	require.NoError(t, b.AddNode(4, 50.8490, 4.3550))
	b.AddEdge(1, 2, 140, false, nil)
	b.AddEdge(2, 3, 140, false, nil)
	b.AddEdge(3, 4, 140, false, nil)

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestResolveBatchOrderPreserving(t *testing.T) {
	projector := testProjector(t)
	r := NewResolver(gridGraph(t, projector), projector)

	points := []datastructure.Coordinate{
		{Lat: 50.8489, Lon: 4.3549},
		{Lat: 50.8461, Lon: 4.3521},
		{Lat: 50.8471, Lon: 4.3531},
	}
	matches, err := r.ResolveBatch(points)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, int32(4), matches[0].NodeID)
	assert.Equal(t, int32(1), matches[1].NodeID)
	assert.Equal(t, int32(2), matches[2].NodeID)
}

func TestResolveExactNodeHitHasZeroDistance(t *testing.T) {
	projector := testProjector(t)
	r := NewResolver(gridGraph(t, projector), projector)

	match, err := r.Resolve(datastructure.NewCoordinate(50.8470, 4.3530))
	require.NoError(t, err)

	assert.Equal(t, int32(2), match.NodeID)
	assert.Equal(t, 0.0, match.Dist)
}

func TestSnapDistanceMeters(t *testing.T) {
	projector := testProjector(t)
	r := NewResolver(gridGraph(t, projector), projector)

	query := datastructure.NewCoordinate(50.8461, 4.3521)
	match, err := r.Resolve(query)
	require.NoError(t, err)
	require.Equal(t, int32(1), match.NodeID)

	// the geodesic distance agrees with the planar snap distance at street
	// scale
	meters, ok := r.SnapDistanceMeters(query, match)
	require.True(t, ok)
	assert.Greater(t, meters, 0.0)
	assert.InDelta(t, match.Dist, meters, match.Dist*0.01)

	_, ok = r.SnapDistanceMeters(query, datastructure.NodeMatch{NodeID: 42})
	assert.False(t, ok)
}

func TestResolveTieBreakFirstInStableOrder(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	// two nodes on the exact same coordinate, perfectly equidistant to
	// any query
	require.NoError(t, b.AddNode(7, 50.8470, 4.3530))
	require.NoError(t, b.AddNode(3, 50.8470, 4.3530))
	b.AddEdge(7, 3, 1, false, nil)
	g, err := b.Build()
	require.NoError(t, err)

	r := NewResolver(g, projector)
	for i := 0; i < 5; i++ {
		match, err := r.Resolve(datastructure.NewCoordinate(50.8471, 4.3531))
		require.NoError(t, err)
		assert.Equal(t, int32(7), match.NodeID)
	}
}

func TestResolveSkipsInvalidCoordinateNodes(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, math.NaN(), 4.3520))
	require.NoError(t, b.AddNode(2, 50.8470, 4.3530))
	b.AddEdge(1, 2, 100, false, nil)
	g, err := b.Build()
	require.NoError(t, err)

	r := NewResolver(g, projector)
	// node 1 is closer in id order but has no usable coordinates
	match, err := r.Resolve(datastructure.NewCoordinate(50.8469, 4.3529))
	require.NoError(t, err)
	assert.Equal(t, int32(2), match.NodeID)
}

func TestResolveNoCandidates(t *testing.T) {
	projector := testProjector(t)
	b := roadgraph.NewBuilder(projector)
	require.NoError(t, b.AddNode(1, math.NaN(), 4.3520))
	g, err := b.Build()
	require.NoError(t, err)

	r := NewResolver(g, projector)
	_, err = r.ResolveBatch([]datastructure.Coordinate{{Lat: 50.8470, Lon: 4.3530}})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestResolveBatchServesCacheHits(t *testing.T) {
	projector := testProjector(t)
	r := NewResolver(gridGraph(t, projector), projector)

	point := datastructure.NewCoordinate(50.8470, 4.3530)
	first, err := r.Resolve(point)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheSize())

	second, err := r.Resolve(point)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.CacheSize())

	uncached := NewResolver(gridGraph(t, projector), projector, WithoutCache())
	third, err := uncached.Resolve(point)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, 0, uncached.CacheSize())
}

func TestRtreeIndexMatchesBruteForce(t *testing.T) {
	projector := testProjector(t)
	g := gridGraph(t, projector)

	brute := NewResolver(g, projector, WithoutCache())
	indexed := NewResolver(g, projector, WithoutCache(), WithRtreeIndex())

	points := []datastructure.Coordinate{
		{Lat: 50.8459, Lon: 4.3519},
		{Lat: 50.8473, Lon: 4.3533},
		{Lat: 50.8481, Lon: 4.3542},
		{Lat: 50.8495, Lon: 4.3555},
	}
	bruteMatches, err := brute.ResolveBatch(points)
	require.NoError(t, err)
	indexedMatches, err := indexed.ResolveBatch(points)
	require.NoError(t, err)

	assert.Equal(t, bruteMatches, indexedMatches)
}
