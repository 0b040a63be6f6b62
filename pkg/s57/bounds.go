package s57

import (
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/s57topo/internal/parser"
)

// emptyBound contains nothing and intersects nothing.
var emptyBound = orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}

// toBound converts radian bounds to an orb.Bound in degrees, [lon, lat].
func toBound(b parser.Bounds) orb.Bound {
	if b.IsEmpty() {
		return emptyBound
	}
	minLat, minLon, maxLat, maxLon := b.Degrees()
	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}

func fromBound(b orb.Bound) parser.Bounds {
	if b.IsEmpty() {
		return parser.EmptyBounds()
	}
	return parser.BoundsFromDegrees(b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}

// NodePoint returns a node position as [lon, lat].
func NodePoint(n *Node) orb.Point {
	return orb.Point{n.Lon, n.Lat}
}
