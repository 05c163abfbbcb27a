package scene

import (
	"fmt"
	"io"
	"testing"

	"github.com/Urbanninja1/2DHD-sub001/pkg/placement"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// manifestForHall creates a manifest whose scattered life layer scales
// with the requested instance count.
func manifestForHall(items, perItem int) *spec.FurnishingManifest {
	m := &spec.FurnishingManifest{
		Room: spec.RoomMeta{ID: "bench-hall"},
		Atmosphere: spec.Atmosphere{
			Ambient:     spec.AmbientLight{Color: "#ffffff", Intensity: 0.6},
			PostProcess: spec.PostProcess{Exposure: 1, Contrast: 1},
		},
	}
	for i := 0; i < items; i++ {
		m.Life = append(m.Life, spec.FurnishingItem{
			ID:       fmt.Sprintf("clutter-%d", i),
			Category: "decor",
			Material: "oak",
			Scale:    1,
			Placement: spec.PlacementRule{
				Strategy: spec.StrategyScattered,
				Count:    perItem,
				Rotation: spec.RotationNamed(spec.RotationRandom),
			},
		})
	}
	return m
}

func runFullPipeline(tb testing.TB, items, perItem int) *Scene {
	tb.Helper()
	room := spec.RoomInput{
		ID:         "bench-hall",
		Dimensions: spec.Dimensions{Width: 30, Depth: 20, Height: 8},
		Doors:      []spec.Door{{ID: "main", Wall: spec.WallSouth, Width: 2}},
	}
	rm := placement.Resolve(manifestForHall(items, perItem), room, placement.Options{})
	s, report := Assemble(rm, room, nil)
	if !report.Valid {
		tb.Fatalf("assembly failed: %s", report.Summary)
	}
	if err := Render(io.Discard, s, FormatCompact); err != nil {
		tb.Fatalf("Render: %v", err)
	}
	return s
}

func TestLargeHall(t *testing.T) {
	s := runFullPipeline(t, 20, 40)
	if s.InstanceCount() == 0 {
		t.Fatal("expected instances for a large hall")
	}
	t.Logf("large hall: %d groups, %d instances", len(s.Groups), s.InstanceCount())
}

func BenchmarkFullPipelineSmall(b *testing.B) {
	for i := 0; i < b.N; i++ {
		runFullPipeline(b, 6, 10)
	}
}

func BenchmarkFullPipelineLarge(b *testing.B) {
	for i := 0; i < b.N; i++ {
		runFullPipeline(b, 20, 40)
	}
}
