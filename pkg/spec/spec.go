package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project file names inside a room project directory.
const (
	RoomFile     = "room.yaml"
	ManifestFile = "manifest.yaml"
)

// FieldError reports a document that was rejected at the boundary.
type FieldError struct {
	File   string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Reason)
}

// Project is a room input together with its furnishing manifest.
type Project struct {
	Dir      string
	Room     *RoomInput
	Manifest *FurnishingManifest
}

// LoadProject loads room.yaml and manifest.yaml from a project directory.
func LoadProject(projectDir string) (*Project, error) {
	room, err := LoadRoom(filepath.Join(projectDir, RoomFile))
	if err != nil {
		return nil, err
	}
	manifest, err := LoadManifest(filepath.Join(projectDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	return &Project{Dir: projectDir, Room: room, Manifest: manifest}, nil
}

// LoadRoom reads and validates a room input document (YAML or JSON).
func LoadRoom(path string) (*RoomInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room file: %w", err)
	}
	return ParseRoom(data, filepath.Base(path))
}

// LoadManifest reads and validates a furnishing manifest (YAML or JSON).
func LoadManifest(path string) (*FurnishingManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}
	return ParseManifest(data, filepath.Base(path))
}

// ParseRoom decodes a room input and rejects it when required fields are
// missing or out of range. name identifies the document in errors.
func ParseRoom(data []byte, name string) (*RoomInput, error) {
	var room RoomInput
	if err := decodeStrict(data, &room); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := checkRoom(&room, name); err != nil {
		return nil, err
	}
	return &room, nil
}

// ParseManifest decodes a furnishing manifest produced by the external
// generator. The generator is not trusted: unknown fields, unknown
// strategies and dangling anchor references are rejected.
func ParseManifest(data []byte, name string) (*FurnishingManifest, error) {
	var m FurnishingManifest
	if err := decodeStrict(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := checkManifest(&m, name); err != nil {
		return nil, err
	}
	applyDefaults(&m)
	return &m, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("document is empty")
		}
		return err
	}
	return nil
}

func checkRoom(r *RoomInput, file string) error {
	fail := func(field, reason string) error {
		return &FieldError{File: file, Field: field, Reason: reason}
	}
	if r.ID == "" {
		return fail("id", "required")
	}
	if n, bad := firstNonFinite(roomNumbers(r)); bad {
		return fail(n.field, fmt.Sprintf("must be a finite number, got %v", n.value))
	}
	if r.Dimensions.Width <= 0 {
		return fail("dimensions.width", "must be > 0")
	}
	if r.Dimensions.Depth <= 0 {
		return fail("dimensions.depth", "must be > 0")
	}
	if r.Dimensions.Height <= 0 {
		return fail("dimensions.height", "must be > 0")
	}
	for i, d := range r.Doors {
		switch d.Wall {
		case WallNorth, WallSouth, WallEast, WallWest:
		default:
			return fail(fmt.Sprintf("doors[%d].wall", i), fmt.Sprintf("unknown wall %q", d.Wall))
		}
		if d.Width <= 0 {
			return fail(fmt.Sprintf("doors[%d].width", i), "must be > 0")
		}
	}
	return nil
}

func checkManifest(m *FurnishingManifest, file string) error {
	fail := func(field, reason string) error {
		return &FieldError{File: file, Field: field, Reason: reason}
	}

	if n, bad := firstNonFinite(manifestNumbers(m)); bad {
		return fail(n.field, fmt.Sprintf("must be a finite number, got %v", n.value))
	}

	for name, f := range m.Features {
		if len(f.XRange) != 0 && len(f.XRange) != 2 {
			return fail("features."+name+".x_range", "must be [min, max]")
		}
		if len(f.ZRange) != 0 && len(f.ZRange) != 2 {
			return fail("features."+name+".z_range", "must be [min, max]")
		}
	}

	seen := make(map[string]string)
	for _, layer := range Layers {
		for i, it := range m.Layer(layer) {
			path := fmt.Sprintf("%s[%d]", layer, i)
			if it.ID == "" {
				return fail(path+".id", "required")
			}
			if prev, dup := seen[it.ID]; dup {
				return fail(path+".id", fmt.Sprintf("duplicate item id %q (first declared at %s)", it.ID, prev))
			}
			seen[it.ID] = path
			if it.Scale < 0 {
				return fail(path+".scale", "must be >= 0")
			}
			if err := checkPlacement(m, it.Placement, path+".placement", fail); err != nil {
				return err
			}
		}
	}

	lights := make(map[string]string)
	for i, l := range m.Atmosphere.Lights {
		path := fmt.Sprintf("atmosphere.lights[%d].name", i)
		if l.Name == "" {
			return fail(path, "required")
		}
		if prev, dup := lights[l.Name]; dup {
			return fail(path, fmt.Sprintf("duplicate light name %q (first declared at %s)", l.Name, prev))
		}
		lights[l.Name] = path
	}

	emitters := make(map[string]string)
	for i, e := range m.Atmosphere.Particles {
		path := fmt.Sprintf("atmosphere.particles[%d].name", i)
		if e.Name == "" {
			return fail(path, "required")
		}
		if prev, dup := emitters[e.Name]; dup {
			return fail(path, fmt.Sprintf("duplicate emitter name %q (first declared at %s)", e.Name, prev))
		}
		emitters[e.Name] = path
	}

	return checkDerivedNames(m, lights, emitters, fail)
}

// checkDerivedNames rejects standalone light and emitter names that fall in
// the "<item>-light-<n>" or "<item>-particles-<n>" space reserved for the
// instances of compound items.
func checkDerivedNames(m *FurnishingManifest, lights, emitters map[string]string, fail func(string, string) error) error {
	reserved := func(names map[string]string, kind string, has func(*Compound) bool) error {
		for _, layer := range Layers {
			for _, it := range m.Layer(layer) {
				if it.Compound == nil || !has(it.Compound) {
					continue
				}
				prefix := it.ID + "-" + kind + "-"
				for name, path := range names {
					suffix, ok := strings.CutPrefix(name, prefix)
					if !ok || suffix == "" || strings.Trim(suffix, "0123456789") != "" {
						continue
					}
					return fail(path, fmt.Sprintf("name %q is reserved for the derived %s of item %q", name, kind, it.ID))
				}
			}
		}
		return nil
	}
	if err := reserved(lights, "light", func(c *Compound) bool { return c.Light != nil }); err != nil {
		return err
	}
	return reserved(emitters, "particles", func(c *Compound) bool { return c.Particles != nil })
}

func checkPlacement(m *FurnishingManifest, p PlacementRule, path string, fail func(string, string) error) error {
	if p.Strategy == "" {
		return fail(path+".strategy", "required")
	}
	if !p.Strategy.Known() {
		return fail(path+".strategy", fmt.Sprintf("unknown strategy %q", p.Strategy))
	}
	if p.Strategy.NeedsAnchor() {
		if p.Anchor == "" {
			return fail(path+".anchor", fmt.Sprintf("required for %s", p.Strategy))
		}
		f, ok := m.Features[p.Anchor]
		if !ok {
			return fail(path+".anchor", fmt.Sprintf("unknown feature %q", p.Anchor))
		}
		if p.Strategy == StrategyAlongSurface {
			if _, _, _, ok := f.Extent(); !ok {
				return fail(path+".anchor", fmt.Sprintf("feature %q declares no x_range or z_range", p.Anchor))
			}
		}
	} else if p.Anchor != "" {
		if _, ok := m.Features[p.Anchor]; !ok {
			return fail(path+".anchor", fmt.Sprintf("unknown feature %q", p.Anchor))
		}
	}

	switch p.Strategy {
	case StrategyArray:
		if len(p.Positions) == 0 {
			return fail(path+".positions", "array strategy needs at least one position")
		}
	case StrategyAlongSurface:
		if p.Count <= 0 {
			return fail(path+".count", "must be > 0")
		}
	case StrategyScattered:
		if p.Count <= 0 && p.Density <= 0 {
			return fail(path+".count", "scattered strategy needs count or density > 0")
		}
	}
	if p.Count < 0 {
		return fail(path+".count", "must be >= 0")
	}
	if p.Spacing < 0 {
		return fail(path+".spacing", "must be >= 0")
	}
	return nil
}

// Neutral post-process values used when the generator omits them.
const (
	defaultExposure   = 1.0
	defaultContrast   = 1.0
	defaultLightDecay = 2.0
)

func applyDefaults(m *FurnishingManifest) {
	for _, layer := range Layers {
		items := m.Layer(layer)
		for i := range items {
			if items[i].Scale == 0 {
				items[i].Scale = 1
			}
			if c := items[i].Compound; c != nil && c.Light != nil && c.Light.Decay == 0 {
				c.Light.Decay = defaultLightDecay
			}
		}
	}
	for i := range m.Atmosphere.Lights {
		if m.Atmosphere.Lights[i].Decay == 0 {
			m.Atmosphere.Lights[i].Decay = defaultLightDecay
		}
	}
	pp := &m.Atmosphere.PostProcess
	if pp.Exposure == 0 {
		pp.Exposure = defaultExposure
	}
	if pp.Contrast == 0 {
		pp.Contrast = defaultContrast
	}
	if m.Atmosphere.Ambient.Color == "" {
		m.Atmosphere.Ambient.Color = "#ffffff"
	}
}
