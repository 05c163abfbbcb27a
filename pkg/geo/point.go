package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Point2D represents a point on the floor plane (Y is up in the room).
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

// Origin is the room centre.
var Origin = Point2D{0, 0}

// Pt is a shorthand constructor for Point2D.
func Pt(x, z float64) Point2D {
	return Point2D{X: x, Z: z}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Z - q.Z}
}

// Length returns the Euclidean length of the vector.
func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

// Distance returns the Euclidean distance from p to q.
func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// Orb converts p to an orb point with Z mapped onto the second axis.
func (p Point2D) Orb() orb.Point {
	return orb.Point{p.X, p.Z}
}

// FromOrb is the inverse of Point2D.Orb.
func FromOrb(o orb.Point) Point2D {
	return Point2D{X: o.X(), Z: o.Y()}
}

// YawToward returns the rotation about +Y that turns an object at from,
// whose front faces +Z, toward target. Coincident points yield 0.
func YawToward(from, target Point2D) float64 {
	d := target.Sub(from)
	if d.Length() < 1e-9 {
		return 0
	}
	return math.Atan2(d.X, d.Z)
}
