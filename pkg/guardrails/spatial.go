package guardrails

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/glb"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

func (c *checker) floor() orb.Bound {
	return geo.FloorRect(c.room.Dimensions.Width, c.room.Dimensions.Depth, c.opts.Margin)
}

// checkBounds re-checks every resolved position. The resolver already drops
// out-of-bounds points for computed strategies, so in practice this catches
// authored array coordinates.
func (c *checker) checkBounds() {
	floor := c.floor()
	for _, layer := range spec.Layers {
		for _, it := range c.rm.Layer(layer) {
			for i, p := range it.ResolvedPositions {
				if geo.Inside(floor, geo.Pt(p.X, p.Z)) {
					continue
				}
				c.report.AddWarning(validation.Result{
					Level: validation.LevelSpatial,
					Rule:  policy.RuleBounds,
					Message: fmt.Sprintf("%s instance %d at (%.2f, %.2f) is outside the room bounds [±%.2f, ±%.2f]",
						it.ID, i, p.X, p.Z, floor.Max.X(), floor.Max.Y()),
					Path:        fmt.Sprintf("%s.%s.resolved_positions[%d]", layer, it.ID, i),
					ActualValue: fmt.Sprintf("(%.2f, %.2f)", p.X, p.Z),
					Expected:    fmt.Sprintf("|x| <= %.2f, |z| <= %.2f", floor.Max.X(), floor.Max.Y()),
				})
			}
		}
	}
}

func (c *checker) checkPlaceholders() {
	floor := c.floor()
	for i, ph := range c.rm.Placeholders {
		if geo.Inside(floor, ph.Position.XZ()) {
			continue
		}
		c.report.AddWarning(validation.Result{
			Level:       validation.LevelSpatial,
			Rule:        policy.RulePlaceholderBounds,
			Message:     fmt.Sprintf("placeholder %q at (%.2f, %.2f) is outside the room bounds", ph.Name, ph.Position.X, ph.Position.Z),
			Path:        fmt.Sprintf("placeholders[%d].position", i),
			ActualValue: fmt.Sprintf("(%.2f, %.2f)", ph.Position.X, ph.Position.Z),
		})
	}
}

// surface is an anchor's true extent, measured from its model.
type surface struct {
	footprint orb.Bound
	top       float64
}

// checkSurfaces compares surface-placed items against the measured geometry
// of their anchor. Each model is read once per run.
func (c *checker) checkSurfaces() {
	surfaces := make(map[string]*surface)
	measured := make(map[string]bool)

	for _, it := range c.rm.Items() {
		rule := it.Placement
		if rule.Strategy != spec.StrategyOnSurface && rule.Strategy != spec.StrategyAlongSurface {
			continue
		}
		f, ok := c.rm.Features[it.Anchor]
		if !ok || f.Model == "" {
			continue
		}
		if !measured[it.Anchor] {
			measured[it.Anchor] = true
			if s, ok := c.measure(it.Anchor, f); ok {
				surfaces[it.Anchor] = s
			}
		}
		s := surfaces[it.Anchor]
		if s == nil {
			continue
		}
		c.checkSurfaceItem(it, s)
	}
}

func (c *checker) measure(name string, f spec.FeatureAnchor) (*surface, bool) {
	path := f.Model
	if !filepath.IsAbs(path) && c.opts.AssetDir != "" {
		path = filepath.Join(c.opts.AssetDir, path)
	}
	fieldPath := "features." + name + ".model"

	if info, err := os.Stat(path); err == nil && info.Size() > policy.MaxModelBytes {
		c.report.AddWarning(validation.Result{
			Level:       validation.LevelBudget,
			Rule:        policy.RuleModelSize,
			Message:     fmt.Sprintf("model %s is %d KB, over the %d KB budget", f.Model, info.Size()/1024, policy.MaxModelBytes/1024),
			Path:        fieldPath,
			ActualValue: info.Size(),
			Expected:    fmt.Sprintf("<= %d bytes", policy.MaxModelBytes),
		})
	}

	b, err := c.opts.Bounds.ReadBounds(path)
	if err != nil {
		reason := "unreadable"
		var noData *glb.NoDataError
		if errors.As(err, &noData) {
			reason = "has no position bounds"
		}
		c.report.AddWarning(validation.Result{
			Level:       validation.LevelSurface,
			Rule:        policy.RuleModelUnreadable,
			Message:     fmt.Sprintf("model for feature %q %s, surface checks skipped: %v", name, reason, err),
			Path:        fieldPath,
			ActualValue: f.Model,
		})
		c.log.Warn("model bounds unavailable", "feature", name, "model", path, "err", err)
		return nil, false
	}

	world := b.Translate(f.Position)
	return &surface{
		footprint: orb.Bound{
			Min: orb.Point{world.Min.X, world.Min.Z},
			Max: orb.Point{world.Max.X, world.Max.Z},
		}.Pad(policy.SurfaceMargin),
		top: world.Max.Y,
	}, true
}

func (c *checker) checkSurfaceItem(it spec.ResolvedItem, s *surface) {
	rule := it.Placement
	checkY := rule.Y.IsZero()

	for i, p := range it.ResolvedPositions {
		path := fmt.Sprintf("%s.resolved_positions[%d]", it.ID, i)
		overflow := func(axis string, v, lo, hi float64) {
			c.report.AddWarning(validation.Result{
				Level: validation.LevelSurface,
				Rule:  policy.RuleSurfaceOverflow,
				Message: fmt.Sprintf("%s instance %d overflows %q on %s: %.2f outside [%.2f, %.2f]",
					it.ID, i, it.Anchor, axis, v, lo, hi),
				Path:        path + "." + axis,
				ActualValue: v,
				Expected:    fmt.Sprintf("[%.2f, %.2f]", lo, hi),
			})
		}
		if p.X < s.footprint.Min.X() || p.X > s.footprint.Max.X() {
			overflow("x", p.X, s.footprint.Min.X(), s.footprint.Max.X())
		}
		if p.Z < s.footprint.Min.Y() || p.Z > s.footprint.Max.Y() {
			overflow("z", p.Z, s.footprint.Min.Y(), s.footprint.Max.Y())
		}

		if !checkY {
			continue
		}
		base := p.Y - rule.Offset.Y
		if d := math.Abs(base - s.top); d > policy.SurfaceYTolerance {
			c.report.AddWarning(validation.Result{
				Level: validation.LevelSurface,
				Rule:  policy.RuleSurfaceHeight,
				Message: fmt.Sprintf("%s instance %d sits at %.2f but %q measures %.2f tall (off by %.2f)",
					it.ID, i, base, it.Anchor, s.top, d),
				Path:        path + ".y",
				ActualValue: base,
				Expected:    fmt.Sprintf("%.2f ± %.2f", s.top, policy.SurfaceYTolerance),
				Suggestions: []string{fmt.Sprintf("set features.%s.top to %.2f", it.Anchor, s.top)},
			})
		}
	}
}
