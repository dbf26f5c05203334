// Package projection converts WGS84 coordinates into a fixed UTM planar CRS
// so every distance in the pipeline is an accurate Euclidean distance in
// meters. One projector instance owns one transform for its whole lifetime.
package projection

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/geo"
)

var ErrOutOfProjectionDomain = errors.New("coordinate outside projection domain")

// WGS84 ellipsoid and transverse mercator constants.
const (
	wgs84SemiMajorAxis = 6378137.0
	wgs84Flattening    = 1.0 / 298.257223563

	utmScaleFactor   = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
	utmMinLat        = -80.0
	utmMaxLat        = 84.0
)

type Projector struct {
	zone  int
	south bool

	cacheEnabled bool
	mu           sync.RWMutex
	cache        map[datastructure.Coordinate]datastructure.Point
}

type Option func(*Projector)

// WithoutCache disables exact value memoization of projected points.
func WithoutCache() Option {
	return func(p *Projector) {
		p.cacheEnabled = false
	}
}

// NewProjector builds a projector for one UTM zone. The zone is fixed for
// the session; re-projecting the same dataset with another zone requires a
// new instance.
func NewProjector(zone int, south bool, opts ...Option) (*Projector, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("%w: utm zone %d not in [1,60]", ErrOutOfProjectionDomain, zone)
	}
	p := &Projector{
		zone:         zone,
		south:        south,
		cacheEnabled: true,
		cache:        make(map[datastructure.Coordinate]datastructure.Point),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewProjectorFromCRS rebuilds a projector from a recorded EPSG identifier,
// e.g. the CRS persisted inside a road graph snapshot.
func NewProjectorFromCRS(crs string, opts ...Option) (*Projector, error) {
	var code int
	if _, err := fmt.Sscanf(crs, "EPSG:%d", &code); err != nil {
		return nil, fmt.Errorf("%w: unrecognized crs %q", ErrOutOfProjectionDomain, crs)
	}
	switch {
	case code >= 32601 && code <= 32660:
		return NewProjector(code-32600, false, opts...)
	case code >= 32701 && code <= 32760:
		return NewProjector(code-32700, true, opts...)
	}
	return nil, fmt.Errorf("%w: %q is not a utm crs", ErrOutOfProjectionDomain, crs)
}

// ZoneForLongitude returns the UTM zone containing the meridian.
func ZoneForLongitude(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// CRS returns the EPSG identifier of the projector's target CRS, recorded on
// the road graph so downstream consumers can tell which plane they are in.
func (p *Projector) CRS() string {
	if p.south {
		return fmt.Sprintf("EPSG:%d", 32700+p.zone)
	}
	return fmt.Sprintf("EPSG:%d", 32600+p.zone)
}

// Project converts one WGS84 coordinate to planar UTM meters. Deterministic
// for a given input; out of domain input is a configuration error, there is
// no fallback.
func (p *Projector) Project(c datastructure.Coordinate) (datastructure.Point, error) {
	if p.cacheEnabled {
		p.mu.RLock()
		cached, ok := p.cache[c]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	if !geo.ValidLatLon(c) || math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return datastructure.Point{}, fmt.Errorf("%w: (%f, %f)", ErrOutOfProjectionDomain, c.Lat, c.Lon)
	}
	if c.Lat < utmMinLat || c.Lat > utmMaxLat {
		return datastructure.Point{}, fmt.Errorf("%w: latitude %f outside [%f, %f]",
			ErrOutOfProjectionDomain, c.Lat, utmMinLat, utmMaxLat)
	}

	point := p.transverseMercator(c)

	if p.cacheEnabled {
		p.mu.Lock()
		p.cache[c] = point
		p.mu.Unlock()
	}
	return point, nil
}

// ProjectBatch projects every coordinate in order, failing on the first out
// of domain input.
func (p *Projector) ProjectBatch(coords []datastructure.Coordinate) ([]datastructure.Point, error) {
	points := make([]datastructure.Point, len(coords))
	for i, c := range coords {
		point, err := p.Project(c)
		if err != nil {
			return nil, err
		}
		points[i] = point
	}
	return points, nil
}

// CacheSize is exposed for observability and tests.
func (p *Projector) CacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// transverseMercator is the forward UTM projection (Snyder, Map Projections -
// A Working Manual, eq. 8-9..8-13).
func (p *Projector) transverseMercator(c datastructure.Coordinate) datastructure.Point {
	lat := degToRad(c.Lat)
	lon := degToRad(c.Lon)
	lon0 := degToRad(float64(p.zone)*6 - 183)

	e2 := wgs84Flattening * (2 - wgs84Flattening)
	ep2 := e2 / (1 - e2)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	tanLat := math.Tan(lat)

	n := wgs84SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	cc := ep2 * cosLat * cosLat
	a := cosLat * (lon - lon0)

	m := wgs84SemiMajorAxis * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*lat -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*lat) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*lat) -
		(35*e2*e2*e2/3072)*math.Sin(6*lat))

	x := utmFalseEasting + utmScaleFactor*n*(a+
		(1-t+cc)*a*a*a/6+
		(5-18*t+t*t+72*cc-58*ep2)*a*a*a*a*a/120)

	y := utmScaleFactor * (m + n*tanLat*(a*a/2+
		(5-t+9*cc+4*cc*cc)*a*a*a*a/24+
		(61-58*t+t*t+600*cc-330*ep2)*a*a*a*a*a*a/720))
	if p.south {
		y += utmFalseNorthing
	}

	return datastructure.NewPoint(x, y)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
