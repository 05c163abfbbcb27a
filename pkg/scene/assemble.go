package scene

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

// Assemble converts a resolved manifest into a scene. Every hard guardrail
// is applied again here; each correction is logged and recorded as a
// warning in the returned report. rm is not modified.
func Assemble(rm *spec.ResolvedManifest, room spec.RoomInput, logger *slog.Logger) (*Scene, *validation.Report) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &assembler{
		scene:  NewScene(),
		report: validation.NewReport(),
		log:    logger.With("room", room.ID),
	}
	s := a.scene

	s.Metadata = Metadata{
		RoomID:     room.ID,
		Castle:     room.Castle,
		Type:       room.Type,
		Mood:       room.Mood,
		Dimensions: room.Dimensions,
	}
	for _, d := range room.Doors {
		c := d.Position(room.Dimensions)
		s.Doors = append(s.Doors, Door{
			ID:       d.ID,
			Wall:     d.Wall,
			Position: geo.Vec3{X: c.X, Z: c.Z},
			Width:    d.Width,
			Height:   d.Height,
		})
	}
	s.Ambient = rm.Atmosphere.Ambient
	s.PostProcess = rm.Atmosphere.PostProcess
	if v := rm.Atmosphere.Volumetric; v != nil {
		vc := *v
		s.Volumetric = &vc
	}
	s.Placeholders = append(s.Placeholders, rm.Placeholders...)

	a.assembleGroups(rm)
	derivedLights, derivedEmitters := a.expandCompounds(rm)
	a.assembleLights(rm.Atmosphere.Lights, derivedLights)
	a.assembleEmitters(rm.Atmosphere.Particles, derivedEmitters)
	a.clampAmbient()
	a.clampPostProcess()

	a.report.Stats.InstanceCount = s.InstanceCount()
	a.report.Stats.LightCount = len(s.Lights)
	a.report.Stats.DerivedLightCount = len(derivedLights)
	return s, a.report
}

type assembler struct {
	scene  *Scene
	report *validation.Report
	log    *slog.Logger
}

type layeredItem struct {
	layer spec.Layer
	item  spec.ResolvedItem
}

// sortedItems returns the items with positions in emission order: known
// categories by policy.CategoryOrder, then unknown categories by name.
// Declaration order is kept within a category.
func sortedItems(rm *spec.ResolvedManifest) []layeredItem {
	var items []layeredItem
	for _, l := range spec.Layers {
		for _, it := range rm.Layer(l) {
			if len(it.ResolvedPositions) == 0 {
				continue
			}
			items = append(items, layeredItem{layer: l, item: it})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := strings.ToLower(items[i].item.Category), strings.ToLower(items[j].item.Category)
		ri, rj := policy.CategoryRank(ci), policy.CategoryRank(cj)
		if ri != rj {
			return ri < rj
		}
		if ri == len(policy.CategoryOrder) {
			return ci < cj
		}
		return false
	})
	return items
}

func (a *assembler) assembleGroups(rm *spec.ResolvedManifest) {
	for _, li := range sortedItems(rm) {
		it := li.item
		g := Group{
			ID:            it.ID,
			Category:      it.Category,
			Layer:         li.layer,
			Material:      it.Material,
			MaterialClass: it.MaterialClass,
			New:           it.New,
			Scale:         it.Scale,
			Instances:     make([]Instance, 0, len(it.ResolvedPositions)),
		}
		for _, p := range it.ResolvedPositions {
			g.Instances = append(g.Instances, Instance{
				Position: geo.Vec3{X: p.X, Y: p.Y, Z: p.Z},
				Rotation: p.Yaw(),
			})
		}
		addGroup(a.scene, g)
	}
}

// addGroup appends a group and updates the index.
func addGroup(s *Scene, g Group) {
	s.Groups = append(s.Groups, g)
	s.Index.Categories[g.Category] = append(s.Index.Categories[g.Category], g.ID)
	s.Index.Layers[g.Layer] = append(s.Index.Layers[g.Layer], g.ID)
}

// expandCompounds creates one light and/or emitter per instance of every
// compound item, in group order.
func (a *assembler) expandCompounds(rm *spec.ResolvedManifest) ([]Light, []Emitter) {
	var lights []Light
	var emitters []Emitter
	for _, li := range sortedItems(rm) {
		it := li.item
		if it.Compound == nil {
			continue
		}
		for i, p := range it.ResolvedPositions {
			if l := it.Compound.Light; l != nil {
				lights = append(lights, Light{
					ID:        fmt.Sprintf("%s-light-%d", it.ID, i),
					Color:     l.Color,
					Position:  geo.Vec3{X: p.X, Y: p.Y + l.YOffset, Z: p.Z},
					Intensity: l.Intensity,
					Distance:  l.Distance,
					Decay:     l.Decay,
					Source:    it.ID,
				})
			}
			if e := it.Compound.Particles; e != nil {
				emitters = append(emitters, Emitter{
					ID:       fmt.Sprintf("%s-particles-%d", it.ID, i),
					Kind:     e.Kind,
					Position: geo.Vec3{X: p.X, Y: p.Y + e.YOffset, Z: p.Z},
					Rate:     e.Rate,
					Source:   it.ID,
				})
			}
		}
	}
	return lights, emitters
}

// assembleLights merges standalone and derived lights under the light cap.
// Derived lights are dropped first; standalone lights are only cut when
// they alone exceed the cap.
func (a *assembler) assembleLights(standalone []spec.PointLight, derived []Light) {
	lights := make([]Light, 0, len(standalone)+len(derived))
	for _, l := range standalone {
		lights = append(lights, Light{
			ID:         l.Name,
			Color:      l.Color,
			Position:   l.Position,
			Intensity:  l.Intensity,
			Distance:   l.Distance,
			Decay:      l.Decay,
			CastShadow: l.CastShadow,
		})
	}
	if len(lights) > policy.MaxLights {
		a.correct(policy.RuleLightCap, "lights", len(lights), policy.MaxLights,
			fmt.Sprintf("dropped %d standalone lights over the cap of %d", len(lights)-policy.MaxLights, policy.MaxLights))
		lights = lights[:policy.MaxLights]
	}

	free := policy.MaxLights - len(lights)
	if len(derived) > free {
		a.correct(policy.RuleDerivedLightCap, "lights", len(derived), free,
			fmt.Sprintf("dropped %d of %d derived lights to stay under the cap of %d", len(derived)-free, len(derived), policy.MaxLights))
		derived = derived[:free]
	}
	lights = append(lights, derived...)

	for i := range lights {
		l := &lights[i]
		if v, changed := policy.Floor(l.Intensity, policy.PointIntensityFloor); changed {
			a.correct(policy.RulePointIntensity, "lights."+l.ID+".intensity", validation.Number(l.Intensity), v,
				fmt.Sprintf("raised light %q intensity from %.2f to %.2f", l.ID, l.Intensity, v))
			l.Intensity = v
		}
		if v, changed := policy.Floor(l.Distance, policy.PointDistanceFloor); changed {
			a.correct(policy.RulePointDistance, "lights."+l.ID+".distance", validation.Number(l.Distance), v,
				fmt.Sprintf("raised light %q distance from %.1f to %.1f", l.ID, l.Distance, v))
			l.Distance = v
		}
	}
	a.scene.Lights = lights
}

func (a *assembler) assembleEmitters(standalone []spec.ParticleEmitter, derived []Emitter) {
	for _, p := range standalone {
		a.scene.Emitters = append(a.scene.Emitters, Emitter{
			ID:       p.Name,
			Kind:     p.Kind,
			Position: p.Position,
			Rate:     p.Rate,
		})
	}
	a.scene.Emitters = append(a.scene.Emitters, derived...)
}

func (a *assembler) clampAmbient() {
	amb := &a.scene.Ambient
	if v, changed := policy.Floor(amb.Intensity, policy.AmbientFloor); changed {
		a.correct(policy.RuleAmbientFloor, "ambient.intensity", validation.Number(amb.Intensity), v,
			fmt.Sprintf("raised ambient intensity from %.2f to %.2f", amb.Intensity, v))
		amb.Intensity = v
	}
}

func (a *assembler) clampPostProcess() {
	pp := &a.scene.PostProcess
	apply := func(rule, field string, ptr *float64, v float64, changed bool) {
		if !changed {
			return
		}
		a.correct(rule, "post_process."+field, validation.Number(*ptr), v,
			fmt.Sprintf("clamped post-process %s from %.2f to %.2f", field, *ptr, v))
		*ptr = v
	}

	v, changed := policy.Floor(pp.Exposure, policy.ExposureFloor)
	apply(policy.RuleExposureFloor, "exposure", &pp.Exposure, v, changed)
	v, changed = policy.Ceil(pp.VignetteDarkness, policy.VignetteDarknessCeil)
	apply(policy.RuleVignetteCeil, "vignette_darkness", &pp.VignetteDarkness, v, changed)
	v, changed = policy.Floor(pp.Brightness, policy.BrightnessFloor)
	apply(policy.RuleBrightnessFloor, "brightness", &pp.Brightness, v, changed)
	v, changed = policy.Ceil(pp.Contrast, policy.ContrastCeil)
	apply(policy.RuleContrastCeil, "contrast", &pp.Contrast, v, changed)
}

// correct records a write-time correction.
func (a *assembler) correct(rule, path string, actual, applied any, msg string) {
	a.report.AddWarning(validation.Result{
		Level:       validation.LevelWriter,
		Rule:        rule,
		Message:     msg,
		Path:        path,
		ActualValue: actual,
		Expected:    fmt.Sprint(applied),
	})
	a.log.Warn("scene value corrected", "rule", rule, "path", path, "from", actual, "to", applied)
}
