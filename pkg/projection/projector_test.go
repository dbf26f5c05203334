package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

func TestProjectCentralMeridian(t *testing.T) {
	// zone 31 central meridian is 3°E, a point on it projects to the
	// false easting exactly, and the equator to northing 0
	p, err := NewProjector(31, false)
	require.NoError(t, err)

	point, err := p.Project(datastructure.NewCoordinate(0, 3))
	require.NoError(t, err)

	assert.Equal(t, 500000.0, point.X)
	assert.Equal(t, 0.0, point.Y)
}

func TestProjectDeterministic(t *testing.T) {
	p, err := NewProjector(31, false)
	require.NoError(t, err)

	brussels := datastructure.NewCoordinate(50.846557, 4.352398)

	first, err := p.Project(brussels)
	require.NoError(t, err)
	second, err := p.Project(brussels)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// cache off must give bit identical output too
	uncached, err := NewProjector(31, false, WithoutCache())
	require.NoError(t, err)
	third, err := uncached.Project(brussels)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestProjectExactValueCacheKey(t *testing.T) {
	p, err := NewProjector(31, false)
	require.NoError(t, err)

	_, err = p.Project(datastructure.NewCoordinate(50.846557, 4.352398))
	require.NoError(t, err)
	// differs in the last decimal, must be a distinct cache entry
	_, err = p.Project(datastructure.NewCoordinate(50.846558, 4.352398))
	require.NoError(t, err)

	assert.Equal(t, 2, p.CacheSize())
}

func TestProjectNorthingGrowsNorthward(t *testing.T) {
	p, err := NewProjector(31, false)
	require.NoError(t, err)

	south, err := p.Project(datastructure.NewCoordinate(50.0, 4.0))
	require.NoError(t, err)
	north, err := p.Project(datastructure.NewCoordinate(51.0, 4.0))
	require.NoError(t, err)

	assert.Greater(t, north.Y, south.Y)
	// one degree of latitude is roughly 111km
	assert.InDelta(t, 111000, north.Y-south.Y, 1000)
}

func TestProjectOutOfDomain(t *testing.T) {
	p, err := NewProjector(31, false)
	require.NoError(t, err)

	_, err = p.Project(datastructure.NewCoordinate(89.0, 4.0))
	assert.ErrorIs(t, err, ErrOutOfProjectionDomain)

	_, err = p.Project(datastructure.NewCoordinate(math.NaN(), 4.0))
	assert.ErrorIs(t, err, ErrOutOfProjectionDomain)

	_, err = p.Project(datastructure.NewCoordinate(50.0, 231.0))
	assert.ErrorIs(t, err, ErrOutOfProjectionDomain)
}

func TestNewProjectorInvalidZone(t *testing.T) {
	_, err := NewProjector(0, false)
	assert.ErrorIs(t, err, ErrOutOfProjectionDomain)

	_, err = NewProjector(61, false)
	assert.ErrorIs(t, err, ErrOutOfProjectionDomain)
}

func TestZoneForLongitude(t *testing.T) {
	assert.Equal(t, 31, ZoneForLongitude(4.35))
	assert.Equal(t, 1, ZoneForLongitude(-180))
	assert.Equal(t, 60, ZoneForLongitude(179.9))
}

func TestCRS(t *testing.T) {
	north, err := NewProjector(31, false)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32631", north.CRS())

	south, err := NewProjector(54, true)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32754", south.CRS())
}

func TestNewProjectorFromCRS(t *testing.T) {
	north, err := NewProjectorFromCRS("EPSG:32631")
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32631", north.CRS())

	south, err := NewProjectorFromCRS("EPSG:32754")
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32754", south.CRS())

	for _, crs := range []string{"EPSG:4326", "EPSG:32661", "utm31", ""} {
		_, err := NewProjectorFromCRS(crs)
		assert.ErrorIs(t, err, ErrOutOfProjectionDomain, crs)
	}
}
