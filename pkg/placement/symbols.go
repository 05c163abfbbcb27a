package placement

import (
	"log/slog"
	"math"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// Named heights in metres. Ceiling mounts hang ceilingDrop below the
// room's total height.
const (
	floorHeight     = 0.0
	tableHeight     = 0.78
	wallMountHeight = 1.6
	ceilingDrop     = 0.4
)

// height resolves a vertical placement. An unset placement yields fallback;
// an unknown symbol degrades to floor height.
func (r *resolver) height(v spec.Vertical, fallback float64, log *slog.Logger) float64 {
	if v.IsZero() {
		return fallback
	}
	if h, ok := v.Numeric(); ok {
		return h
	}
	sym, _ := v.Symbol()
	switch sym {
	case spec.VerticalFloor:
		return floorHeight
	case spec.VerticalTableHeight:
		return tableHeight
	case spec.VerticalWallMount:
		return wallMountHeight
	case spec.VerticalCeiling:
		return math.Max(r.room.Dimensions.Height-ceilingDrop, 0)
	}
	log.Warn("unknown vertical placement, using floor height", "symbol", string(sym))
	return floorHeight
}

// yaw resolves a rotation rule for an instance at pos. anchor is the
// governing feature's position, nil when the rule has none. An unset
// rotation yields nil.
func (r *resolver) yaw(rot spec.Rotation, pos geo.Point2D, anchor *geo.Point2D, log *slog.Logger) *float64 {
	if rot.IsZero() {
		return nil
	}
	if a, ok := rot.Numeric(); ok {
		return &a
	}

	var a float64
	sym, _ := rot.Symbol()
	switch sym {
	case spec.RotationFaceCenter:
		a = geo.YawToward(pos, geo.Origin)
	case spec.RotationFaceAnchor:
		if anchor == nil {
			log.Warn("face-anchor rotation without an anchor, facing room centre")
			a = geo.YawToward(pos, geo.Origin)
		} else {
			a = geo.YawToward(pos, *anchor)
		}
	case spec.RotationRandom:
		a = r.rng.Float64() * 2 * math.Pi
	default:
		log.Warn("unknown rotation, using 0", "symbol", string(sym))
	}
	return &a
}
