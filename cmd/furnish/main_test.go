package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Urbanninja1/2DHD-sub001/pkg/glb/glbtest"
)

const exampleProject = "../../examples/great-hall"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--assets", t.TempDir(), exampleProject)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Result: VALID") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Triangles:") {
		t.Errorf("expected budget stats in output:\n%s", out)
	}
}

func TestValidateCommandJSON(t *testing.T) {
	out, err := execute(t, "validate", "--json", "--assets", t.TempDir(), exampleProject)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var doc struct {
		Room       string `json:"room"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc.Room != "ironrath-great-hall" || !doc.Validation.Valid {
		t.Errorf("doc = %+v", doc)
	}
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "resolve", exampleProject)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{"room:", "resolved_positions:", "floor-rushes"} {
		if !strings.Contains(out, want) {
			t.Errorf("resolve output missing %q", want)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "-o", dir, "--format", "compact", "--assets", t.TempDir(), exampleProject)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	path := filepath.Join(dir, "ironrath-great-hall.scene.ts")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestGenerateCommandReportsMissingProject(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "-o", dir, "--assets", t.TempDir(), exampleProject, filepath.Join(dir, "missing"))
	if err == nil {
		t.Fatal("expected error for missing project")
	}
	if !strings.Contains(out, "FAILED") {
		t.Errorf("expected a failure line:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "ironrath-great-hall.scene.ts")); err != nil {
		t.Errorf("the good project should still be written: %v", err)
	}
}

func TestBoundsCommand(t *testing.T) {
	dir := t.TempDir()
	path := glbtest.WriteBox(t, dir, "chest.glb", [3]float64{-0.5, 0, -0.3}, [3]float64{0.5, 0.6, 0.3})

	out, err := execute(t, "bounds", path)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if !strings.Contains(out, "size: 1.000 x 0.600 x 0.600") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "bounds", filepath.Join(dir, "missing.glb")); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestUnknownFormatFlag(t *testing.T) {
	if _, err := execute(t, "generate", "-o", t.TempDir(), "--format", "minified", exampleProject); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDensityFlagListsTiers(t *testing.T) {
	flag := newRootCmd().PersistentFlags().Lookup("density")
	if flag == nil {
		t.Fatal("density flag missing")
	}
	if !strings.Contains(flag.Usage, "sparse, standard, dense, lavish") {
		t.Errorf("usage = %q", flag.Usage)
	}
}

func TestUnknownDensityFlag(t *testing.T) {
	_, err := execute(t, "validate", "--density", "crammed", exampleProject)
	if err == nil || !strings.Contains(err.Error(), "want one of") {
		t.Errorf("expected the known tiers in the error, got %v", err)
	}
}
