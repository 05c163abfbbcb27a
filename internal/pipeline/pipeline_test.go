package pipeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Urbanninja1/2DHD-sub001/internal/config"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/scene"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

func loadExample(t *testing.T) *spec.Project {
	t.Helper()
	p, err := spec.LoadProject("../../examples/great-hall")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	return p
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		AssetDir:  t.TempDir(),
		OutputDir: filepath.Join(t.TempDir(), "generated"),
		Format:    scene.FormatExpanded,
	}
}

func assertNoOutput(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no output in %s, found %d entries", dir, len(entries))
	}
}

func TestRunWritesScene(t *testing.T) {
	p := loadExample(t)
	opts := testOptions(t)

	res, err := Run(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := filepath.Join(opts.OutputDir, "ironrath-great-hall.scene.ts")
	if res.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), `id: "ironrath-great-hall"`) {
		t.Error("output does not look like the great hall scene")
	}
	if !res.Report.Valid {
		t.Errorf("report invalid: %s", res.Report.Summary)
	}
	if res.Tier.Name != "standard" {
		t.Errorf("tier = %q, want standard", res.Tier.Name)
	}
	if res.Resolved.InstanceCount() == 0 {
		t.Error("expected resolved instances")
	}
}

func TestRunBlocksOnHardFailure(t *testing.T) {
	p := loadExample(t)
	p.Manifest.Atmosphere.Ambient.Intensity = 0.1
	opts := testOptions(t)

	res, err := Run(context.Background(), p, opts)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *BlockedError, got %v", err)
	}
	if !blocked.Report.HasRule(policy.RuleAmbientFloor) {
		t.Error("blocked report should carry the ambient-floor error")
	}
	if res == nil || res.OutputPath != "" {
		t.Error("a blocked run should return its result without an output path")
	}
	assertNoOutput(t, opts.OutputDir)
}

func TestRunStrictPromotesWarnings(t *testing.T) {
	p := loadExample(t)
	p.Manifest.Atmosphere.Volumetric = &spec.Volumetric{Enabled: true, Density: 0.2, Samples: 32}

	loose := testOptions(t)
	res, err := Run(context.Background(), p, loose)
	if err != nil {
		t.Fatalf("loose run: %v", err)
	}
	if !res.Report.HasRule(policy.RuleVolumetricDensity) {
		t.Error("loose run should report the volumetric warning")
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Errorf("loose run should write output: %v", err)
	}

	strict := testOptions(t)
	strict.Strict = true
	_, err = Run(context.Background(), p, strict)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("strict run: expected *BlockedError, got %v", err)
	}
	assertNoOutput(t, strict.OutputDir)
}

func TestCheckDoesNotWrite(t *testing.T) {
	p := loadExample(t)
	opts := testOptions(t)

	res, err := Check(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Report == nil || res.Resolved == nil {
		t.Fatal("Check should return the report and resolved manifest")
	}
	assertNoOutput(t, opts.OutputDir)
}

func TestCheckDensityOverride(t *testing.T) {
	p := loadExample(t)
	opts := testOptions(t)

	opts.Density = "lavish"
	res, err := Check(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Tier.Name != "lavish" {
		t.Errorf("tier = %q, want lavish", res.Tier.Name)
	}

	opts.Density = "crammed"
	res, err = Check(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Tier.Name != policy.DefaultTier {
		t.Errorf("unknown tier should fall back to %s, got %s", policy.DefaultTier, res.Tier.Name)
	}
	if len(res.Report.Info) == 0 || !strings.Contains(res.Report.Info[0].Message, "crammed") {
		t.Errorf("expected an info note about the unknown tier, got %+v", res.Report.Info)
	}
}

func TestRunCancelled(t *testing.T) {
	p := loadExample(t)
	opts := testOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, p, opts); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	assertNoOutput(t, opts.OutputDir)
}

func TestResolveIsDeterministic(t *testing.T) {
	p := loadExample(t)
	a := Resolve(p, Options{Seed: 9})
	b := Resolve(p, Options{Seed: 9})
	if a.InstanceCount() != b.InstanceCount() {
		t.Fatal("same seed should resolve the same instances")
	}
	for i, it := range a.Life {
		for j, pos := range it.ResolvedPositions {
			other := b.Life[i].ResolvedPositions[j]
			if pos.X != other.X || pos.Z != other.Z || pos.Yaw() != other.Yaw() {
				t.Fatalf("life item %s instance %d differs between runs", it.ID, j)
			}
		}
	}
}

func TestFromSettings(t *testing.T) {
	s := config.Defaults()
	s.Format = "compact"
	s.Strict = true

	opts, err := FromSettings(&s, nil)
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}
	if opts.Format != scene.FormatCompact || !opts.Strict || opts.Margin != s.Margin {
		t.Errorf("opts = %+v", opts)
	}

	s.Format = "minified"
	if _, err := FromSettings(&s, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

// editedProject copies the example project with one replacement applied to
// its manifest and loads it.
func editedProject(t *testing.T, from, to string) (*spec.Project, error) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{spec.RoomFile, spec.ManifestFile} {
		data, err := os.ReadFile(filepath.Join("../../examples/great-hall", name))
		if err != nil {
			t.Fatal(err)
		}
		if name == spec.ManifestFile {
			if !strings.Contains(string(data), from) {
				t.Fatalf("example manifest has no %q", from)
			}
			data = []byte(strings.Replace(string(data), from, to, 1))
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return spec.LoadProject(dir)
}

func TestLoadRejectsNonFiniteAtmosphere(t *testing.T) {
	tests := []struct {
		name, from, to, field string
	}{
		{"ambient", "intensity: 0.55", "intensity: .nan", "atmosphere.ambient.intensity"},
		{"exposure", "exposure: 1.05", "exposure: .nan", "atmosphere.post_process.exposure"},
		{"light distance", "distance: 9", "distance: .inf", "atmosphere.lights[0].distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := editedProject(t, tt.from, tt.to)
			var fe *spec.FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *spec.FieldError, got %v", err)
			}
			if fe.Field != tt.field {
				t.Errorf("field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestLoadRejectsDuplicateLightName(t *testing.T) {
	_, err := editedProject(t, "name: high-window", "name: hearth-fire")
	var fe *spec.FieldError
	if !errors.As(err, &fe) || fe.Field != "atmosphere.lights[1].name" {
		t.Fatalf("expected a field error on the second light, got %v", err)
	}
}

func TestNonFiniteResolvedManifestIsBlocked(t *testing.T) {
	p := loadExample(t)
	p.Manifest.Atmosphere.PostProcess.Contrast = math.NaN()
	p.Manifest.Atmosphere.Lights[0].Distance = math.NaN()
	opts := testOptions(t)

	_, err := Run(context.Background(), p, opts)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *BlockedError, got %v", err)
	}
	if !blocked.Report.HasRule(policy.RuleContrastCeil) || !blocked.Report.HasRule(policy.RuleNonFinite) {
		t.Errorf("unexpected errors: %+v", blocked.Report.Errors)
	}
	assertNoOutput(t, opts.OutputDir)
}
