package geo

import (
	"github.com/golang/geo/s2"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

// ProjectPointToLineCoord projects snap onto the geodesic segment between the
// two street endpoints, in geographic space. Used by debug tooling that wants
// the snapped location back in lat/lon rather than in the planar CRS.
func ProjectPointToLineCoord(nearestStPoint, secondNearestStPoint,
	snap datastructure.Coordinate) datastructure.Coordinate {
	nearestStS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(nearestStPoint.Lat, nearestStPoint.Lon))
	secondNearestStS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(secondNearestStPoint.Lat, secondNearestStPoint.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))

	projection := s2.Project(snapS2, nearestStS2, secondNearestStS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// ValidLatLon reports whether the coordinate is a real WGS84 position.
func ValidLatLon(c datastructure.Coordinate) bool {
	return s2.LatLngFromDegrees(c.Lat, c.Lon).IsValid()
}
