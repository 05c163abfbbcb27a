package placement

import (
	"log/slog"

	"github.com/paulmach/orb/planar"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// alongSurface distributes rule.Count points along the anchor's extent. The
// row is centred on the extent; with no explicit spacing the gap is
// extent/(count+1), leaving one gap of margin at each end.
func (r *resolver) alongSurface(rule spec.PlacementRule, log *slog.Logger) []spec.ResolvedPosition {
	f, ok := r.anchor(rule, log)
	if !ok {
		return nil
	}
	axis, lo, hi, ok := f.Extent()
	if !ok {
		log.Warn("anchor has no extent, no positions resolved", "anchor", rule.Anchor)
		return nil
	}
	n := rule.Count
	if n <= 0 {
		return nil
	}
	if hi < lo {
		lo, hi = hi, lo
	}

	spacing := rule.Spacing
	if spacing <= 0 {
		spacing = (hi - lo) / float64(n+1)
	}
	start := (lo+hi)/2 - spacing*float64(n-1)/2

	y := r.height(rule.Y, f.TopHeight(), log) + rule.Offset.Y
	anchorPt := f.Position.XZ()

	out := make([]spec.ResolvedPosition, 0, n)
	skipped := 0
	for i := 0; i < n; i++ {
		t := start + spacing*float64(i)
		var pos geo.Point2D
		if axis == spec.AxisX {
			pos = geo.Pt(t+rule.Offset.X, f.Position.Z+rule.Offset.Z)
		} else {
			pos = geo.Pt(f.Position.X+rule.Offset.X, t+rule.Offset.Z)
		}
		if rule.ExcludeDoors && r.nearDoor(pos) {
			skipped++
			continue
		}
		out = append(out, spec.ResolvedPosition{
			X:        pos.X,
			Y:        y,
			Z:        pos.Z,
			Rotation: r.yaw(rule.Rotation, pos, &anchorPt, log),
		})
	}
	if skipped > 0 {
		log.Debug("skipped positions inside door clearance", "skipped", skipped)
	}
	return out
}

// nearDoor reports whether p falls inside any door's exclusion zone.
func (r *resolver) nearDoor(p geo.Point2D) bool {
	for _, d := range r.room.Doors {
		if planar.Distance(p.Orb(), d.Position(r.room.Dimensions).Orb()) < d.ExclusionRadius() {
			return true
		}
	}
	return false
}

// nearFeature reports whether p falls inside any feature's exclusion radius.
func (r *resolver) nearFeature(p geo.Point2D) bool {
	for _, f := range r.features {
		if f.ExclusionRadius <= 0 {
			continue
		}
		if planar.Distance(p.Orb(), f.Position.XZ().Orb()) < f.ExclusionRadius {
			return true
		}
	}
	return false
}
