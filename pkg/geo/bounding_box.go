package geo

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// minBBoxSize keeps the region usable for very close points, ~1km in degree.
const minBBoxSize = 0.01

// BoundingBox is a geographic region (left, bottom, right, top) in degrees,
// the contract handed to the network acquisition collaborator.
type BoundingBox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// CalculateBoundingBox computes the region containing every point plus a
// relative margin (0.1 = 10%).
func CalculateBoundingBox(points []datastructure.Coordinate, margin float64) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, fmt.Errorf("%w: no points provided", ErrInvalidBoundingBox)
	}

	rect := s2.EmptyRect()
	for _, p := range points {
		ll := s2.LatLngFromDegrees(p.Lat, p.Lon)
		if !ll.IsValid() {
			return BoundingBox{}, fmt.Errorf("%w: coordinate (%f, %f) out of range",
				ErrInvalidBoundingBox, p.Lat, p.Lon)
		}
		rect = rect.AddPoint(ll)
	}

	latSize := rect.Hi().Lat.Degrees() - rect.Lo().Lat.Degrees()
	lonSize := rect.Hi().Lng.Degrees() - rect.Lo().Lng.Degrees()

	marginLat := latSize * margin
	marginLon := lonSize * margin
	if latSize < minBBoxSize {
		marginLat = max(marginLat, minBBoxSize/2)
	}
	if lonSize < minBBoxSize {
		marginLon = max(marginLon, minBBoxSize/2)
	}

	bbox := BoundingBox{
		Left:   rect.Lo().Lng.Degrees() - marginLon,
		Bottom: rect.Lo().Lat.Degrees() - marginLat,
		Right:  rect.Hi().Lng.Degrees() + marginLon,
		Top:    rect.Hi().Lat.Degrees() + marginLat,
	}
	if err := bbox.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return bbox, nil
}

func (b BoundingBox) Validate() error {
	if b.Top <= b.Bottom {
		return fmt.Errorf("%w: top must be greater than bottom", ErrInvalidBoundingBox)
	}
	if b.Right <= b.Left {
		return fmt.Errorf("%w: right must be greater than left", ErrInvalidBoundingBox)
	}
	if b.Bottom < -90 || b.Top > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90 degrees", ErrInvalidBoundingBox)
	}
	if b.Left < -180 || b.Right > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180 degrees", ErrInvalidBoundingBox)
	}
	return nil
}

// Contains reports whether the coordinate lies inside the region.
func (b BoundingBox) Contains(c datastructure.Coordinate) bool {
	return c.Lat >= b.Bottom && c.Lat <= b.Top && c.Lon >= b.Left && c.Lon <= b.Right
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
