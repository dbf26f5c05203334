package geo

import (
	"errors"
	"math"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

var ErrEmptyPolyline = errors.New("empty polyline")

// ProjectPointToSegment projects p onto the segment [a,b] using standard
// vector projection with t clamped to [0,1]. A degenerate (zero length)
// segment returns a. Returns the projected point and its distance to p.
func ProjectPointToSegment(p, a, b datastructure.Point) (datastructure.Point, float64) {
	abX := b.X - a.X
	abY := b.Y - a.Y

	abLengthSquared := abX*abX + abY*abY
	if abLengthSquared == 0 {
		return a, p.EuclideanDistance(a)
	}

	t := ((p.X-a.X)*abX + (p.Y-a.Y)*abY) / abLengthSquared
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := datastructure.NewPoint(a.X+t*abX, a.Y+t*abY)
	return proj, p.EuclideanDistance(proj)
}

// ProjectPointToPolyline projects p onto every consecutive segment of the
// polyline and keeps the minimum distance projection. Segments containing a
// non finite vertex are skipped; when every segment is skipped the closest
// original vertex wins instead.
func ProjectPointToPolyline(p datastructure.Point, polyline []datastructure.Point) (datastructure.Point, float64, error) {
	if len(polyline) == 0 {
		return datastructure.Point{}, 0, ErrEmptyPolyline
	}
	if len(polyline) == 1 {
		return polyline[0], p.EuclideanDistance(polyline[0]), nil
	}

	minDist := math.Inf(1)
	var nearestProj datastructure.Point
	found := false

	for i := 0; i < len(polyline)-1; i++ {
		if !finitePoint(polyline[i]) || !finitePoint(polyline[i+1]) {
			continue
		}

		proj, dist := ProjectPointToSegment(p, polyline[i], polyline[i+1])
		if dist < minDist {
			minDist = dist
			nearestProj = proj
			found = true
		}
	}

	if !found {
		// every segment was degenerate in some way, fall back to the
		// closest raw vertex
		for _, vertex := range polyline {
			if !finitePoint(vertex) {
				continue
			}
			dist := p.EuclideanDistance(vertex)
			if dist < minDist {
				minDist = dist
				nearestProj = vertex
				found = true
			}
		}
	}

	if !found {
		return datastructure.Point{}, 0, ErrEmptyPolyline
	}

	return nearestProj, minDist, nil
}

func finitePoint(p datastructure.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
