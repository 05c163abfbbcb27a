package placement

import (
	"math"
	"reflect"
	"testing"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

const tolerance = 1e-9

func testRoom() spec.RoomInput {
	return spec.RoomInput{
		ID:         "ironrath-great-hall",
		Castle:     "ironrath",
		Type:       "great-hall",
		Dimensions: spec.Dimensions{Width: 10, Depth: 8, Height: 6},
		Doors: []spec.Door{
			{ID: "main", Wall: spec.WallSouth, Offset: 0, Width: 1.6, Height: 2.6},
		},
	}
}

func float(v float64) *float64 { return &v }

func testManifest() *spec.FurnishingManifest {
	top := 0.78
	return &spec.FurnishingManifest{
		Room: spec.RoomMeta{ID: "ironrath-great-hall"},
		Features: map[string]spec.FeatureAnchor{
			"long-table": {Position: geo.Vec3{X: 0, Y: 0, Z: 0}, XRange: []float64{-3, 3}, Top: &top},
			"hearth":     {Position: geo.Vec3{X: 0, Y: 0, Z: -3.6}, ExclusionRadius: 1.5},
			"south-wall": {Position: geo.Vec3{X: 0, Y: 1.6, Z: 3.8}, XRange: []float64{-5, 5}},
		},
		Essential: []spec.FurnishingItem{
			{
				ID: "high-seat", Category: "furniture", Scale: 1,
				Placement: spec.PlacementRule{
					Strategy: spec.StrategyAtAnchor, Anchor: "long-table",
					Offset:   geo.Vec3{X: 0, Z: -1},
					Rotation: spec.RotationNamed(spec.RotationFaceAnchor),
				},
			},
		},
		Functional: []spec.FurnishingItem{
			{
				ID: "goblet", Category: "tableware", Scale: 1,
				Placement: spec.PlacementRule{
					Strategy: spec.StrategyAlongSurface, Anchor: "long-table", Count: 5,
					Offset: geo.Vec3{Z: 0.3},
				},
			},
			{
				ID: "platter", Category: "tableware", Scale: 1,
				Placement: spec.PlacementRule{
					Strategy: spec.StrategyOnSurface, Anchor: "long-table",
					Offset: geo.Vec3{X: 1, Y: 0.02},
				},
			},
		},
		Life: []spec.FurnishingItem{
			{
				ID: "rushes", Category: "surface-detail", Scale: 1,
				Placement: spec.PlacementRule{
					Strategy: spec.StrategyScattered, Count: 12,
					Rotation: spec.RotationNamed(spec.RotationRandom),
				},
			},
			{
				ID: "banner", Category: "decor", Scale: 1,
				Placement: spec.PlacementRule{
					Strategy: spec.StrategyArray,
					Y:        spec.VerticalNamed(spec.VerticalWallMount),
					Positions: []spec.Position{
						{X: -2.123456789, Z: -3.9},
						{X: 2.5, Y: float(3.25), Z: -3.9, Rotation: float(math.Pi)},
						{X: 7, Z: 0}, // outside the room on purpose
					},
				},
			},
		},
	}
}

func allPositions(rm *spec.ResolvedManifest, skipArray bool) []spec.ResolvedPosition {
	var out []spec.ResolvedPosition
	for _, it := range rm.Items() {
		if skipArray && it.Placement.Strategy == spec.StrategyArray {
			continue
		}
		out = append(out, it.ResolvedPositions...)
	}
	return out
}

func findItem(t *testing.T, rm *spec.ResolvedManifest, id string) spec.ResolvedItem {
	t.Helper()
	for _, it := range rm.Items() {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %q not found in resolved manifest", id)
	return spec.ResolvedItem{}
}

func TestResolvedPositionsWithinBounds(t *testing.T) {
	room := testRoom()
	rm := Resolve(testManifest(), room, Options{})

	hx := room.Dimensions.Width/2 - 0.3
	hz := room.Dimensions.Depth/2 - 0.3
	for _, p := range allPositions(rm, true) {
		if math.Abs(p.X) > hx+tolerance || math.Abs(p.Z) > hz+tolerance {
			t.Errorf("position (%.3f, %.3f) outside [%.1f, %.1f]", p.X, p.Z, hx, hz)
		}
	}
}

func TestScatterEndToEnd(t *testing.T) {
	room := spec.RoomInput{ID: "hall", Dimensions: spec.Dimensions{Width: 10, Depth: 8, Height: 5}}
	m := &spec.FurnishingManifest{
		Essential: []spec.FurnishingItem{{
			ID: "bench", Category: "furniture",
			Placement: spec.PlacementRule{Strategy: spec.StrategyScattered, Count: 40},
		}},
	}

	rm := Resolve(m, room, Options{Seed: 7})
	item := findItem(t, rm, "bench")

	if item.Requested != 40 {
		t.Errorf("requested = %d, want 40", item.Requested)
	}
	pts := item.ResolvedPositions
	if len(pts) > 40 {
		t.Fatalf("resolved %d positions, want <= 40", len(pts))
	}
	if len(pts) == 0 {
		t.Fatal("expected scattered positions")
	}

	minDist := math.Sqrt(72.0/40.0) * 0.5
	if got := MinSeparation(room.Dimensions, 40); math.Abs(got-minDist) > tolerance {
		t.Errorf("MinSeparation = %f, want %f", got, minDist)
	}
	for i, p := range pts {
		if math.Abs(p.X) > 4.7+tolerance || math.Abs(p.Z) > 3.7+tolerance {
			t.Errorf("position %d (%.3f, %.3f) outside [-4.7,4.7]x[-3.7,3.7]", i, p.X, p.Z)
		}
		for j := i + 1; j < len(pts); j++ {
			d := math.Hypot(p.X-pts[j].X, p.Z-pts[j].Z)
			if d < minDist-tolerance {
				t.Errorf("positions %d and %d only %.3f apart, want >= %.3f", i, j, d, minDist)
			}
		}
	}
	t.Logf("scattered %d of 40 instances", len(pts))
}

func TestScatterUnderDeliversSilently(t *testing.T) {
	room := spec.RoomInput{ID: "cell", Dimensions: spec.Dimensions{Width: 2, Depth: 2, Height: 3}}
	m := &spec.FurnishingManifest{
		Features: map[string]spec.FeatureAnchor{
			"pillar": {Position: geo.Vec3{}, ExclusionRadius: 0.9},
		},
		Life: []spec.FurnishingItem{{
			ID: "straw",
			Placement: spec.PlacementRule{Strategy: spec.StrategyScattered, Count: 200},
		}},
	}

	item := findItem(t, Resolve(m, room, Options{Seed: 3}), "straw")
	if item.Requested != 200 {
		t.Errorf("requested = %d, want 200", item.Requested)
	}
	if len(item.ResolvedPositions) >= 200 {
		t.Errorf("expected under-delivery in a 2x2 room, got %d", len(item.ResolvedPositions))
	}
	for _, p := range item.ResolvedPositions {
		if math.Hypot(p.X, p.Z) < 0.9 {
			t.Errorf("position (%.2f, %.2f) inside the pillar exclusion radius", p.X, p.Z)
		}
	}
}

func TestScatterCountFromDensity(t *testing.T) {
	dims := spec.Dimensions{Width: 10, Depth: 8}
	n := scatterCount(spec.PlacementRule{Strategy: spec.StrategyScattered, Density: 0.25}, dims)
	if n != 20 {
		t.Errorf("scatterCount = %d, want 20", n)
	}
	n = scatterCount(spec.PlacementRule{Strategy: spec.StrategyScattered, Count: 3, Density: 0.25}, dims)
	if n != 3 {
		t.Errorf("count should win over density, got %d", n)
	}
}

func TestArrayPassThrough(t *testing.T) {
	m := testManifest()
	rm := Resolve(m, testRoom(), Options{})
	banner := findItem(t, rm, "banner")

	if len(banner.ResolvedPositions) != 3 {
		t.Fatalf("array positions must never be filtered, got %d", len(banner.ResolvedPositions))
	}
	src := m.Life[1].Placement.Positions
	for i, p := range banner.ResolvedPositions {
		if p.X != src[i].X || p.Z != src[i].Z {
			t.Errorf("position %d changed: (%v, %v) vs (%v, %v)", i, p.X, p.Z, src[i].X, src[i].Z)
		}
	}
	if banner.ResolvedPositions[0].Y != wallMountHeight {
		t.Errorf("defaulted Y = %v, want wall-mount %v", banner.ResolvedPositions[0].Y, wallMountHeight)
	}
	if banner.ResolvedPositions[0].Rotation != nil {
		t.Error("rotation should stay unset when neither position nor rule declares one")
	}
	if banner.ResolvedPositions[1].Y != 3.25 {
		t.Errorf("authored Y = %v, want 3.25", banner.ResolvedPositions[1].Y)
	}
	if r := banner.ResolvedPositions[1].Rotation; r == nil || *r != math.Pi {
		t.Errorf("authored rotation lost: %v", r)
	}
}

func TestAtAnchorAndOnSurface(t *testing.T) {
	rm := Resolve(testManifest(), testRoom(), Options{})

	seat := findItem(t, rm, "high-seat")
	if len(seat.ResolvedPositions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(seat.ResolvedPositions))
	}
	p := seat.ResolvedPositions[0]
	if p.X != 0 || p.Z != -1 || p.Y != 0 {
		t.Errorf("high-seat at (%v, %v, %v), want (0, 0, -1)", p.X, p.Y, p.Z)
	}
	// Facing the table at the origin from z=-1 means yaw 0 (+Z).
	if p.Rotation == nil || math.Abs(*p.Rotation) > tolerance {
		t.Errorf("face-anchor yaw = %v, want 0", p.Rotation)
	}
	if seat.Anchor != "long-table" {
		t.Errorf("anchor = %q, want long-table", seat.Anchor)
	}

	platter := findItem(t, rm, "platter")
	pp := platter.ResolvedPositions[0]
	if math.Abs(pp.Y-0.80) > tolerance {
		t.Errorf("platter Y = %v, want declared top 0.78 + 0.02", pp.Y)
	}
	if pp.X != 1 {
		t.Errorf("platter X = %v, want 1", pp.X)
	}
}

func TestAlongSurfaceDefaultSpacing(t *testing.T) {
	rm := Resolve(testManifest(), testRoom(), Options{})
	goblets := findItem(t, rm, "goblet").ResolvedPositions

	if len(goblets) != 5 {
		t.Fatalf("expected 5 goblets, got %d", len(goblets))
	}
	want := []float64{-2, -1, 0, 1, 2} // extent 6 / (5+1) = 1
	for i, g := range goblets {
		if math.Abs(g.X-want[i]) > tolerance {
			t.Errorf("goblet %d X = %v, want %v", i, g.X, want[i])
		}
		if math.Abs(g.Z-0.3) > tolerance {
			t.Errorf("goblet %d Z = %v, want offset 0.3", i, g.Z)
		}
		if math.Abs(g.Y-0.78) > tolerance {
			t.Errorf("goblet %d Y = %v, want table top 0.78", i, g.Y)
		}
	}
}

func TestAlongSurfaceExplicitSpacingCentred(t *testing.T) {
	m := testManifest()
	m.Functional[0].Placement.Spacing = 0.5
	m.Functional[0].Placement.Count = 3

	goblets := findItem(t, Resolve(m, testRoom(), Options{}), "goblet").ResolvedPositions
	want := []float64{-0.5, 0, 0.5}
	for i, g := range goblets {
		if math.Abs(g.X-want[i]) > tolerance {
			t.Errorf("goblet %d X = %v, want %v", i, g.X, want[i])
		}
	}
}

func TestAlongSurfaceDoorExclusion(t *testing.T) {
	m := testManifest()
	m.Life = append(m.Life, spec.FurnishingItem{
		ID: "torch",
		Placement: spec.PlacementRule{
			Strategy: spec.StrategyAlongSurface, Anchor: "south-wall", Count: 9,
			Offset: geo.Vec3{Z: -0.3}, ExcludeDoors: true,
		},
	})

	torches := findItem(t, Resolve(m, testRoom(), Options{}), "torch").ResolvedPositions
	if len(torches) >= 9 {
		t.Fatalf("expected torches near the south door to be dropped, got %d", len(torches))
	}
	door := testRoom().Doors[0]
	doorPos := door.Position(testRoom().Dimensions)
	for _, p := range torches {
		if geo.Pt(p.X, p.Z).Distance(doorPos) < door.ExclusionRadius() {
			t.Errorf("torch at (%.2f, %.2f) inside door clearance", p.X, p.Z)
		}
		if math.Abs(p.Y-1.6) > tolerance {
			t.Errorf("torch Y = %v, want anchor height 1.6", p.Y)
		}
	}
}

func TestOutOfBoundsDroppedNotClamped(t *testing.T) {
	m := &spec.FurnishingManifest{
		Features: map[string]spec.FeatureAnchor{
			"corner": {Position: geo.Vec3{X: 4.9, Z: 3.9}},
		},
		Essential: []spec.FurnishingItem{{
			ID:        "chest",
			Placement: spec.PlacementRule{Strategy: spec.StrategyAtAnchor, Anchor: "corner"},
		}},
	}
	chest := findItem(t, Resolve(m, testRoom(), Options{}), "chest")
	if len(chest.ResolvedPositions) != 0 {
		t.Errorf("out-of-bounds position should be dropped, got %+v", chest.ResolvedPositions)
	}
	if chest.Requested != 1 {
		t.Errorf("requested = %d, want 1", chest.Requested)
	}
}

func TestUnknownSymbolsDegrade(t *testing.T) {
	m := &spec.FurnishingManifest{
		Features: map[string]spec.FeatureAnchor{"dais": {Position: geo.Vec3{X: 1, Y: 0.4, Z: 1}}},
		Essential: []spec.FurnishingItem{{
			ID: "throne",
			Placement: spec.PlacementRule{
				Strategy: spec.StrategyAtAnchor, Anchor: "dais",
				Y:        spec.VerticalNamed("hovering"),
				Rotation: spec.RotationNamed("sideways"),
			},
		}},
	}
	p := findItem(t, Resolve(m, testRoom(), Options{}), "throne").ResolvedPositions[0]
	if p.Y != 0 {
		t.Errorf("unknown vertical should degrade to floor, got %v", p.Y)
	}
	if p.Rotation == nil || *p.Rotation != 0 {
		t.Errorf("unknown rotation should degrade to 0, got %v", p.Rotation)
	}
}

func TestCeilingRelativeToRoomHeight(t *testing.T) {
	m := &spec.FurnishingManifest{
		Features: map[string]spec.FeatureAnchor{"centre": {Position: geo.Vec3{}}},
		Essential: []spec.FurnishingItem{{
			ID: "chandelier",
			Placement: spec.PlacementRule{
				Strategy: spec.StrategyAtAnchor, Anchor: "centre",
				Y: spec.VerticalNamed(spec.VerticalCeiling),
			},
		}},
	}
	p := findItem(t, Resolve(m, testRoom(), Options{}), "chandelier").ResolvedPositions[0]
	if math.Abs(p.Y-(6-ceilingDrop)) > tolerance {
		t.Errorf("ceiling Y = %v, want %v", p.Y, 6-ceilingDrop)
	}
}

func TestFaceCenterRotation(t *testing.T) {
	m := &spec.FurnishingManifest{
		Features: map[string]spec.FeatureAnchor{"east": {Position: geo.Vec3{X: 3}}},
		Essential: []spec.FurnishingItem{{
			ID: "chair",
			Placement: spec.PlacementRule{
				Strategy: spec.StrategyAtAnchor, Anchor: "east",
				Rotation: spec.RotationNamed(spec.RotationFaceCenter),
			},
		}},
	}
	p := findItem(t, Resolve(m, testRoom(), Options{}), "chair").ResolvedPositions[0]
	if p.Rotation == nil || math.Abs(*p.Rotation-(-math.Pi/2)) > tolerance {
		t.Errorf("face-center yaw = %v, want -pi/2", p.Rotation)
	}
}

func TestMissingAnchorDegrades(t *testing.T) {
	m := &spec.FurnishingManifest{
		Essential: []spec.FurnishingItem{{
			ID:        "ghost",
			Placement: spec.PlacementRule{Strategy: spec.StrategyOnSurface, Anchor: "nowhere"},
		}},
	}
	item := findItem(t, Resolve(m, testRoom(), Options{}), "ghost")
	if len(item.ResolvedPositions) != 0 {
		t.Errorf("expected no positions for a dangling anchor, got %d", len(item.ResolvedPositions))
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	m := testManifest()
	before := testManifest()

	rm := Resolve(m, testRoom(), Options{})
	rm.Features["long-table"].XRange[0] = -99
	*rm.Features["long-table"].Top = 9
	rm.Life[1].Placement.Positions[0].X = 99

	if !reflect.DeepEqual(m, before) {
		t.Error("Resolve or its output aliases the input manifest")
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := Resolve(testManifest(), testRoom(), Options{})
	b := Resolve(testManifest(), testRoom(), Options{})
	if !reflect.DeepEqual(a, b) {
		t.Error("resolution with the same room id should be deterministic")
	}

	c := Resolve(testManifest(), testRoom(), Options{Seed: 42})
	if reflect.DeepEqual(allPositions(a, false), allPositions(c, false)) {
		t.Error("a different seed should change the scattered layout")
	}
}
