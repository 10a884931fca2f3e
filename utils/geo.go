package utils

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Coordinate is a site location as entered on the site info step.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ValidateCoordinate checks latitude and longitude ranges.
func ValidateCoordinate(coord Coordinate) error {
	// Latitude must be between -90 and 90
	if coord.Lat < -90 || coord.Lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", coord.Lat)
	}

	// Longitude must be between -180 and 180
	if coord.Lng < -180 || coord.Lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", coord.Lng)
	}

	return nil
}

// LocationPoint returns the site as an orb point, or false when the
// coordinates are missing or invalid.
func LocationPoint(lat, lng *float64) (orb.Point, bool) {
	if lat == nil || lng == nil {
		return orb.Point{}, false
	}
	c := Coordinate{Lat: *lat, Lng: *lng}
	if ValidateCoordinate(c) != nil {
		return orb.Point{}, false
	}
	return orb.Point{c.Lng, c.Lat}, true
}

// Bounds returns the bounding box of points, used to frame the dashboard map.
func Bounds(points []orb.Point) (orb.Bound, bool) {
	if len(points) == 0 {
		return orb.Bound{}, false
	}
	b := points[0].Bound()
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b, true
}
