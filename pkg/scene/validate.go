package scene

import (
	"fmt"
	"math"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

// ValidateScene performs structural validation on an assembled scene.
// It checks ID integrity, index consistency, runtime limits and that
// instances fall inside the room shell.
func ValidateScene(s *Scene) *validation.Report {
	r := validation.NewReport()

	if s == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelWriter,
			Message: "scene is nil",
		})
		return r
	}

	validateIDs(s, r)
	validateIndex(s, r)
	validateIndexMembership(s, r)
	validateLimits(s, r)
	validateRoomEnclosure(s, r)
	validateNumbers(s, r)

	return r
}

func validateIDs(s *Scene, r *validation.Report) {
	check := func(kind string, ids []string) {
		seen := make(map[string]int, len(ids))
		for i, id := range ids {
			if id == "" {
				r.AddError(validation.Result{
					Level:       validation.LevelWriter,
					Message:     fmt.Sprintf("%s at index %d has empty ID", kind, i),
					Path:        fmt.Sprintf("%s[%d].id", kind, i),
					ActualValue: "",
					Expected:    "non-empty string",
				})
				continue
			}
			if prev, exists := seen[id]; exists {
				r.AddError(validation.Result{
					Level:       validation.LevelWriter,
					Message:     fmt.Sprintf("duplicate %s ID %q at indices %d and %d", kind, id, prev, i),
					Path:        fmt.Sprintf("%s[%d].id", kind, i),
					ActualValue: id,
				})
			}
			seen[id] = i
		}
	}

	groups := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = g.ID
	}
	lights := make([]string, len(s.Lights))
	for i, l := range s.Lights {
		lights[i] = l.ID
	}
	emitters := make([]string, len(s.Emitters))
	for i, e := range s.Emitters {
		emitters[i] = e.ID
	}
	check("groups", groups)
	check("lights", lights)
	check("emitters", emitters)
}

func validateIndex(s *Scene, r *validation.Report) {
	groupIDs := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		groupIDs[g.ID] = true
	}

	checkIndex := func(indexType, name string, ids []string) {
		for _, id := range ids {
			if !groupIDs[id] {
				r.AddError(validation.Result{
					Level:       validation.LevelWriter,
					Message:     fmt.Sprintf("index %s.%s references non-existent group %q", indexType, name, id),
					Path:        fmt.Sprintf("index.%s.%s", indexType, name),
					ActualValue: id,
					Expected:    "existing group ID",
				})
			}
		}
	}

	for name, ids := range s.Index.Categories {
		checkIndex("categories", name, ids)
	}
	for name, ids := range s.Index.Layers {
		checkIndex("layers", string(name), ids)
	}

	for _, l := range s.Lights {
		if l.Source != "" && !groupIDs[l.Source] {
			r.AddError(validation.Result{
				Level:       validation.LevelWriter,
				Message:     fmt.Sprintf("light %q derived from unknown group %q", l.ID, l.Source),
				Path:        "lights." + l.ID + ".source",
				ActualValue: l.Source,
			})
		}
	}
	for _, e := range s.Emitters {
		if e.Source != "" && !groupIDs[e.Source] {
			r.AddError(validation.Result{
				Level:       validation.LevelWriter,
				Message:     fmt.Sprintf("emitter %q derived from unknown group %q", e.ID, e.Source),
				Path:        "emitters." + e.ID + ".source",
				ActualValue: e.Source,
			})
		}
	}
}

func validateIndexMembership(s *Scene, r *validation.Report) {
	members := func(index map[string][]string) map[string]map[string]bool {
		out := make(map[string]map[string]bool, len(index))
		for key, ids := range index {
			m := make(map[string]bool, len(ids))
			for _, id := range ids {
				m[id] = true
			}
			out[key] = m
		}
		return out
	}
	categoryMembers := members(s.Index.Categories)
	layerIndex := make(map[string][]string, len(s.Index.Layers))
	for l, ids := range s.Index.Layers {
		layerIndex[string(l)] = ids
	}
	layerMembers := members(layerIndex)

	for _, g := range s.Groups {
		if g.ID == "" {
			continue
		}
		if !categoryMembers[g.Category][g.ID] {
			r.AddError(validation.Result{
				Level:       validation.LevelWriter,
				Message:     fmt.Sprintf("group %q has category %q but is not in the categories index", g.ID, g.Category),
				Path:        "index.categories." + g.Category,
				ActualValue: g.ID,
			})
		}
		if !layerMembers[string(g.Layer)][g.ID] {
			r.AddError(validation.Result{
				Level:       validation.LevelWriter,
				Message:     fmt.Sprintf("group %q has layer %q but is not in the layers index", g.ID, g.Layer),
				Path:        "index.layers." + string(g.Layer),
				ActualValue: g.ID,
			})
		}
	}
}

// validateLimits re-asserts the hard runtime limits after assembly.
func validateLimits(s *Scene, r *validation.Report) {
	if len(s.Lights) > policy.MaxLights {
		r.AddError(validation.Result{
			Level:       validation.LevelWriter,
			Rule:        policy.RuleLightCap,
			Message:     fmt.Sprintf("scene has %d lights, cap is %d", len(s.Lights), policy.MaxLights),
			Path:        "lights",
			ActualValue: len(s.Lights),
		})
	}
	if policy.Below(s.Ambient.Intensity, policy.AmbientFloor) {
		r.AddError(validation.Result{
			Level:       validation.LevelWriter,
			Rule:        policy.RuleAmbientFloor,
			Message:     fmt.Sprintf("ambient intensity %.2f below %.2f", s.Ambient.Intensity, policy.AmbientFloor),
			Path:        "ambient.intensity",
			ActualValue: validation.Number(s.Ambient.Intensity),
		})
	}
	pp := s.PostProcess
	if policy.Below(pp.Exposure, policy.ExposureFloor) || policy.Above(pp.VignetteDarkness, policy.VignetteDarknessCeil) ||
		policy.Below(pp.Brightness, policy.BrightnessFloor) || policy.Above(pp.Contrast, policy.ContrastCeil) {
		r.AddError(validation.Result{
			Level:       validation.LevelWriter,
			Message:     "post-process values outside runtime limits",
			Path:        "post_process",
			ActualValue: fmt.Sprintf("%+v", pp),
		})
	}
}

func validateRoomEnclosure(s *Scene, r *validation.Report) {
	dims := s.Metadata.Dimensions
	hx, hz := dims.Width/2, dims.Depth/2

	for _, g := range s.Groups {
		for i, in := range g.Instances {
			p := in.Position
			if math.Abs(p.X) > hx || math.Abs(p.Z) > hz || p.Y < 0 || p.Y > dims.Height {
				r.AddWarning(validation.Result{
					Level:       validation.LevelWriter,
					Rule:        policy.RuleBounds,
					Message:     fmt.Sprintf("group %q instance %d at (%.2f, %.2f, %.2f) is outside the room shell", g.ID, i, p.X, p.Y, p.Z),
					Path:        fmt.Sprintf("groups.%s.instances[%d]", g.ID, i),
					ActualValue: fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z),
				})
				break
			}
		}
	}
}

func validateNumbers(s *Scene, r *validation.Report) {
	nonFinite := func(path string, vs ...float64) {
		for _, v := range vs {
			if policy.Finite(v) {
				continue
			}
			r.AddError(validation.Result{
				Level:       validation.LevelWriter,
				Rule:        policy.RuleNonFinite,
				Message:     fmt.Sprintf("%s has a non-finite value", path),
				Path:        path,
				ActualValue: validation.Number(v),
			})
			return
		}
	}
	xyz := func(v geo.Vec3) []float64 { return []float64{v.X, v.Y, v.Z} }

	nonFinite("ambient", s.Ambient.Intensity)
	pp := s.PostProcess
	nonFinite("post_process", pp.Exposure, pp.VignetteDarkness, pp.Brightness, pp.Contrast, pp.BloomIntensity)
	if s.Volumetric != nil {
		nonFinite("volumetric", s.Volumetric.Density)
	}
	for _, l := range s.Lights {
		nonFinite("lights."+l.ID, append(xyz(l.Position), l.Intensity, l.Distance, l.Decay)...)
	}
	for _, e := range s.Emitters {
		nonFinite("emitters."+e.ID, append(xyz(e.Position), e.Rate)...)
	}
	for _, d := range s.Doors {
		nonFinite("doors."+d.ID, append(xyz(d.Position), d.Width, d.Height)...)
	}
	for i, ph := range s.Placeholders {
		nonFinite(fmt.Sprintf("placeholders[%d]", i), append(xyz(ph.Position), ph.Rotation, ph.Height)...)
	}

	for _, g := range s.Groups {
		for i, in := range g.Instances {
			nonFinite(fmt.Sprintf("groups.%s.instances[%d]", g.ID, i), append(xyz(in.Position), in.Rotation)...)
		}
		nonFinite(fmt.Sprintf("groups.%s.scale", g.ID), g.Scale)
		if g.Scale <= 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelWriter,
				Message:     fmt.Sprintf("group %q has non-positive scale %.2f", g.ID, g.Scale),
				Path:        fmt.Sprintf("groups.%s.scale", g.ID),
				ActualValue: g.Scale,
				Expected:    "> 0",
			})
		}
	}
}
