package placement

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

const (
	// usableFloor is the share of the floor treated as available for
	// scattered props; the rest is circulation.
	usableFloor = 0.9
	// separationFactor scales sqrt(area/count) into the minimum distance
	// between scattered instances.
	separationFactor = 0.5
	// attemptsPerPoint caps rejection sampling at this many candidates per
	// requested point.
	attemptsPerPoint = 20
	// fullSpreadCount is the request size at which samples cover the whole
	// floor; smaller requests cluster toward the centre.
	fullSpreadCount = 16
	minSpread       = 0.35
)

// MinSeparation returns the minimum distance enforced between n scattered
// instances in a room of the given dimensions.
func MinSeparation(dims spec.Dimensions, n int) float64 {
	if n <= 0 {
		return 0
	}
	area := usableFloor * dims.FloorArea()
	return separationFactor * math.Sqrt(area/float64(n))
}

// scatterCount returns the number of instances a scattered rule asks for.
// Count wins over density.
func scatterCount(rule spec.PlacementRule, dims spec.Dimensions) int {
	if rule.Count > 0 {
		return rule.Count
	}
	if rule.Density > 0 {
		return int(math.Round(rule.Density * dims.FloorArea()))
	}
	return 0
}

// spreadFor returns the fraction of the floor half-extents sampled for a
// request of n points.
func spreadFor(n int) float64 {
	s := minSpread + (1-minSpread)*float64(n)/fullSpreadCount
	return math.Min(s, 1)
}

// scatter performs approximate minimum-distance sampling. It returns at
// most n points and silently returns fewer when the attempt budget runs
// out.
func (r *resolver) scatter(rule spec.PlacementRule, n int, log *slog.Logger) []spec.ResolvedPosition {
	if n <= 0 {
		return nil
	}
	minDist := MinSeparation(r.room.Dimensions, n)
	spread := spreadFor(n)

	center := r.floor.Center()
	hx := (r.floor.Max.X() - r.floor.Min.X()) / 2 * spread
	hz := (r.floor.Max.Y() - r.floor.Min.Y()) / 2 * spread

	var anchorPt *geo.Point2D
	if f, ok := r.anchor(rule, log); ok {
		p := f.Position.XZ()
		anchorPt = &p
	}
	y := r.height(rule.Y, 0, log) + rule.Offset.Y

	accepted := make(orb.MultiPoint, 0, n)
	out := make([]spec.ResolvedPosition, 0, n)
	for attempt := 0; attempt < n*attemptsPerPoint && len(out) < n; attempt++ {
		cand := orb.Point{
			center.X() + (r.rng.Float64()*2-1)*hx,
			center.Y() + (r.rng.Float64()*2-1)*hz,
		}
		pos := geo.FromOrb(cand)
		if !tooClose(accepted, cand, minDist) &&
			!r.nearFeature(pos) &&
			!(rule.ExcludeDoors && r.nearDoor(pos)) {
			accepted = append(accepted, cand)
			out = append(out, spec.ResolvedPosition{
				X:        pos.X,
				Y:        y,
				Z:        pos.Z,
				Rotation: r.yaw(rule.Rotation, pos, anchorPt, log),
			})
		}
	}
	if len(out) < n {
		log.Debug("scatter under-delivered", "requested", n, "placed", len(out), "min_distance", minDist)
	}
	return out
}

func tooClose(pts orb.MultiPoint, p orb.Point, minDist float64) bool {
	for _, q := range pts {
		if planar.Distance(p, q) < minDist {
			return true
		}
	}
	return false
}
