package geo

import (
	"math"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

const earthRadiusM = 6371007

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// GreatCircleDistanceMeters is the haversine distance between two geographic
// coordinates. Debug surfaces report snap distances with it, in ground
// meters rather than in the planar CRS.
func GreatCircleDistanceMeters(from, to datastructure.Coordinate) float64 {
	latOne := degreeToRadians(from.Lat)
	longOne := degreeToRadians(from.Lon)
	latTwo := degreeToRadians(to.Lat)
	longTwo := degreeToRadians(to.Lon)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusM * c
}
