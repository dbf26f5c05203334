package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

func TestProjectPointToSegment(t *testing.T) {
	a := datastructure.NewPoint(0, 0)
	b := datastructure.NewPoint(10, 0)

	// interior projection
	proj, dist := ProjectPointToSegment(datastructure.NewPoint(4, 3), a, b)
	assert.Equal(t, datastructure.NewPoint(4, 0), proj)
	assert.Equal(t, 3.0, dist)

	// clamped to segment start
	proj, dist = ProjectPointToSegment(datastructure.NewPoint(-5, 0), a, b)
	assert.Equal(t, a, proj)
	assert.Equal(t, 5.0, dist)

	// clamped to segment end
	proj, dist = ProjectPointToSegment(datastructure.NewPoint(13, 4), a, b)
	assert.Equal(t, b, proj)
	assert.Equal(t, 5.0, dist)

	// degenerate segment collapses to its anchor
	proj, dist = ProjectPointToSegment(datastructure.NewPoint(3, 4), a, a)
	assert.Equal(t, a, proj)
	assert.Equal(t, 5.0, dist)
}

func TestProjectPointToPolyline(t *testing.T) {
	polyline := []datastructure.Point{
		datastructure.NewPoint(0, 0),
		datastructure.NewPoint(10, 0),
		datastructure.NewPoint(10, 10),
	}

	// closest to the second segment
	proj, dist, err := ProjectPointToPolyline(datastructure.NewPoint(12, 5), polyline)
	require.NoError(t, err)
	assert.Equal(t, datastructure.NewPoint(10, 5), proj)
	assert.Equal(t, 2.0, dist)

	// point on the line projects onto itself
	proj, dist, err = ProjectPointToPolyline(datastructure.NewPoint(5, 0), polyline)
	require.NoError(t, err)
	assert.Equal(t, datastructure.NewPoint(5, 0), proj)
	assert.Equal(t, 0.0, dist)
}

func TestProjectPointToPolylineEdgeCases(t *testing.T) {
	_, _, err := ProjectPointToPolyline(datastructure.NewPoint(0, 0), nil)
	assert.ErrorIs(t, err, ErrEmptyPolyline)

	single := []datastructure.Point{datastructure.NewPoint(3, 4)}
	proj, dist, err := ProjectPointToPolyline(datastructure.NewPoint(0, 0), single)
	require.NoError(t, err)
	assert.Equal(t, single[0], proj)
	assert.Equal(t, 5.0, dist)

	// NaN vertex disables both adjacent segments, the finite vertices
	// still win via the fallback
	withNaN := []datastructure.Point{
		datastructure.NewPoint(0, 0),
		datastructure.NewPoint(math.NaN(), math.NaN()),
		datastructure.NewPoint(10, 0),
	}
	proj, _, err = ProjectPointToPolyline(datastructure.NewPoint(1, 1), withNaN)
	require.NoError(t, err)
	assert.Equal(t, datastructure.NewPoint(0, 0), proj)

	allNaN := []datastructure.Point{
		datastructure.NewPoint(math.NaN(), 0),
		datastructure.NewPoint(0, math.NaN()),
	}
	_, _, err = ProjectPointToPolyline(datastructure.NewPoint(0, 0), allNaN)
	assert.ErrorIs(t, err, ErrEmptyPolyline)
}
