// Package placement turns declarative placement rules into concrete,
// in-bounds instance coordinates.
package placement

import (
	"hash/fnv"
	"io"
	"log/slog"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// Options tune a resolution run.
type Options struct {
	// Margin is kept free along every wall. Zero means policy.DefaultMargin.
	Margin float64
	// Seed drives the random strategies. Zero derives a seed from the room
	// id so reruns of the same room are stable.
	Seed   int64
	Logger *slog.Logger
}

type resolver struct {
	room     spec.RoomInput
	features map[string]spec.FeatureAnchor
	floor    orb.Bound
	rng      *rand.Rand
	log      *slog.Logger
}

// Resolve returns a new manifest with every item's resolved positions
// filled in. It never fails: malformed geometry degrades to fewer points
// and a logged warning. The input manifest is not modified.
func Resolve(m *spec.FurnishingManifest, room spec.RoomInput, opts Options) *spec.ResolvedManifest {
	margin := opts.Margin
	if margin == 0 {
		margin = policy.DefaultMargin
	}
	seed := opts.Seed
	if seed == 0 {
		seed = roomSeed(room.ID)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &resolver{
		room:     room,
		features: m.Features,
		floor:    geo.FloorRect(room.Dimensions.Width, room.Dimensions.Depth, margin),
		rng:      rand.New(rand.NewSource(seed)),
		log:      logger.With("room", room.ID),
	}

	out := &spec.ResolvedManifest{
		Room:         m.Room,
		Features:     spec.CloneFeatures(m.Features),
		Atmosphere:   m.Atmosphere.Clone(),
		Placeholders: append([]spec.Placeholder(nil), m.Placeholders...),
	}
	total := 0
	for _, layer := range spec.Layers {
		items := m.Layer(layer)
		if items == nil {
			continue
		}
		resolved := make([]spec.ResolvedItem, 0, len(items))
		for _, it := range items {
			ri := r.resolveItem(it)
			total += len(ri.ResolvedPositions)
			resolved = append(resolved, ri)
		}
		out.SetLayer(layer, resolved)
	}

	r.log.Debug("placement resolved", "instances", total)
	return out
}

func (r *resolver) resolveItem(it spec.FurnishingItem) spec.ResolvedItem {
	rule := it.Placement
	ri := spec.ResolvedItem{
		FurnishingItem: it.Clone(),
		Anchor:         rule.Anchor,
	}
	log := r.log.With("item", it.ID, "strategy", rule.Strategy)

	var pts []spec.ResolvedPosition
	switch rule.Strategy {
	case spec.StrategyArray:
		ri.Requested = len(rule.Positions)
		ri.ResolvedPositions = r.array(rule, log)
		return ri
	case spec.StrategyAtAnchor:
		ri.Requested = 1
		pts = r.atAnchor(rule, false, log)
	case spec.StrategyOnSurface:
		ri.Requested = 1
		pts = r.atAnchor(rule, true, log)
	case spec.StrategyAlongSurface:
		ri.Requested = rule.Count
		pts = r.alongSurface(rule, log)
	case spec.StrategyScattered:
		n := scatterCount(rule, r.room.Dimensions)
		ri.Requested = n
		pts = r.scatter(rule, n, log)
	default:
		log.Warn("unknown placement strategy, item skipped")
		return ri
	}

	ri.ResolvedPositions = r.keepInBounds(pts, log)
	return ri
}

// anchor looks up the rule's anchor. A dangling reference is logged and
// reported as missing.
func (r *resolver) anchor(rule spec.PlacementRule, log *slog.Logger) (spec.FeatureAnchor, bool) {
	if rule.Anchor == "" {
		return spec.FeatureAnchor{}, false
	}
	f, ok := r.features[rule.Anchor]
	if !ok {
		log.Warn("anchor not registered, no positions resolved", "anchor", rule.Anchor)
	}
	return f, ok
}

// array passes author coordinates through, defaulting only Y and rotation.
func (r *resolver) array(rule spec.PlacementRule, log *slog.Logger) []spec.ResolvedPosition {
	var anchorPt *geo.Point2D
	if f, ok := r.anchor(rule, log); ok {
		p := f.Position.XZ()
		anchorPt = &p
	}
	out := make([]spec.ResolvedPosition, 0, len(rule.Positions))
	for _, p := range rule.Positions {
		rp := spec.ResolvedPosition{X: p.X, Z: p.Z}
		if p.Y != nil {
			rp.Y = *p.Y
		} else {
			rp.Y = r.height(rule.Y, 0, log)
		}
		if p.Rotation != nil {
			rot := *p.Rotation
			rp.Rotation = &rot
		} else {
			rp.Rotation = r.yaw(rule.Rotation, geo.Pt(p.X, p.Z), anchorPt, log)
		}
		out = append(out, rp)
	}
	return out
}

// atAnchor places a single instance at the anchor plus offset. On a
// surface the height comes from the anchor's declared top, not from the
// asset geometry.
func (r *resolver) atAnchor(rule spec.PlacementRule, onSurface bool, log *slog.Logger) []spec.ResolvedPosition {
	f, ok := r.anchor(rule, log)
	if !ok {
		return nil
	}
	pos := geo.Pt(f.Position.X+rule.Offset.X, f.Position.Z+rule.Offset.Z)

	var y float64
	if onSurface {
		y = f.TopHeight()
	} else {
		y = r.height(rule.Y, f.Position.Y, log)
	}
	anchorPt := f.Position.XZ()
	return []spec.ResolvedPosition{{
		X:        pos.X,
		Y:        y + rule.Offset.Y,
		Z:        pos.Z,
		Rotation: r.yaw(rule.Rotation, pos, &anchorPt, log),
	}}
}

// keepInBounds drops, never clamps, points outside the floor minus margin.
func (r *resolver) keepInBounds(pts []spec.ResolvedPosition, log *slog.Logger) []spec.ResolvedPosition {
	kept := make([]spec.ResolvedPosition, 0, len(pts))
	for _, p := range pts {
		if geo.Inside(r.floor, geo.Pt(p.X, p.Z)) {
			kept = append(kept, p)
		}
	}
	if dropped := len(pts) - len(kept); dropped > 0 {
		log.Warn("dropped out-of-bounds positions", "dropped", dropped, "kept", len(kept))
	}
	return kept
}

func roomSeed(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64() >> 1)
}
