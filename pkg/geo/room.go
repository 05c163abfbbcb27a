package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// FloorRect returns the room floor centred on the origin, shrunk by margin
// on every side. A margin larger than half a dimension collapses that axis
// to the centre line.
func FloorRect(width, depth, margin float64) orb.Bound {
	hx := math.Max(width/2-margin, 0)
	hz := math.Max(depth/2-margin, 0)
	return orb.Bound{
		Min: orb.Point{-hx, -hz},
		Max: orb.Point{hx, hz},
	}
}

// Inside reports whether p lies within r, edges included.
func Inside(r orb.Bound, p Point2D) bool {
	return r.Contains(p.Orb())
}
