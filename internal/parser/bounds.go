package parser

import "math"

// Bounds is a latitude/longitude box in radians.
//
// The zero value is a degenerate box at (0, 0); use EmptyBounds to start an
// accumulation.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// EmptyBounds returns the inverted box that any coordinate widens.
func EmptyBounds() Bounds {
	return Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
}

// BoundsFromDegrees builds a box from degree values.
func BoundsFromDegrees(minLat, minLon, maxLat, maxLon float64) Bounds {
	return Bounds{
		MinLat: radians(minLat), MinLon: radians(minLon),
		MaxLat: radians(maxLat), MaxLon: radians(maxLon),
	}
}

// IsEmpty reports whether no coordinate has been added.
func (b Bounds) IsEmpty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Extend widens the box to include a point given in radians.
func (b *Bounds) Extend(lat, lon float64) {
	b.MinLat = math.Min(b.MinLat, lat)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MinLon = math.Min(b.MinLon, lon)
	b.MaxLon = math.Max(b.MaxLon, lon)
}

// Degrees returns the box as minLat, minLon, maxLat, maxLon in degrees.
func (b Bounds) Degrees() (minLat, minLon, maxLat, maxLon float64) {
	return degrees(b.MinLat), degrees(b.MinLon), degrees(b.MaxLat), degrees(b.MaxLon)
}

// Contains reports whether the point (radians) lies inside the box, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Intersects reports whether two boxes overlap.
func (b Bounds) Intersects(other Bounds) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return b.MinLat <= other.MaxLat && b.MaxLat >= other.MinLat &&
		b.MinLon <= other.MaxLon && b.MaxLon >= other.MinLon
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
