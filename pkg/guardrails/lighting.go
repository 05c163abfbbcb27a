package guardrails

import (
	"fmt"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

func (c *checker) checkAmbient() {
	v := c.rm.Atmosphere.Ambient.Intensity
	if policy.Below(v, policy.AmbientFloor) {
		c.report.AddError(validation.Result{
			Level:       validation.LevelGuardrail,
			Rule:        policy.RuleAmbientFloor,
			Message:     fmt.Sprintf("ambient intensity %.2f is below the floor of %.2f", v, policy.AmbientFloor),
			Path:        "atmosphere.ambient.intensity",
			ActualValue: validation.Number(v),
			Expected:    fmt.Sprintf(">= %.2f", policy.AmbientFloor),
			Suggestions: []string{fmt.Sprintf("raise atmosphere.ambient.intensity to at least %.2f", policy.AmbientFloor)},
		})
	}
}

func (c *checker) checkLightCount() {
	standalone := len(c.rm.Atmosphere.Lights)
	derived := derivedLights(c.rm)
	c.report.Stats.LightCount = standalone
	c.report.Stats.DerivedLightCount = derived

	if standalone > policy.MaxLights {
		c.report.AddError(validation.Result{
			Level:       validation.LevelGuardrail,
			Rule:        policy.RuleLightCap,
			Message:     fmt.Sprintf("%d point lights exceed the cap of %d", standalone, policy.MaxLights),
			Path:        "atmosphere.lights",
			ActualValue: standalone,
			Expected:    fmt.Sprintf("<= %d", policy.MaxLights),
		})
		return
	}
	if standalone+derived > policy.MaxLights {
		c.report.AddWarning(validation.Result{
			Level: validation.LevelGuardrail,
			Rule:  policy.RuleDerivedLightCap,
			Message: fmt.Sprintf("%d point lights plus %d from light-bearing items exceed the cap of %d; %d derived lights will be dropped",
				standalone, derived, policy.MaxLights, standalone+derived-policy.MaxLights),
			Path:        "atmosphere.lights",
			ActualValue: standalone + derived,
			Expected:    fmt.Sprintf("<= %d", policy.MaxLights),
		})
	}
}

func (c *checker) checkLightFloors() {
	check := func(path, name string, intensity, distance float64) {
		if !c.finite(path+".intensity", intensity) || !c.finite(path+".distance", distance) {
			return
		}
		if intensity < policy.PointIntensityFloor {
			c.report.AddWarning(validation.Result{
				Level:       validation.LevelGuardrail,
				Rule:        policy.RulePointIntensity,
				Message:     fmt.Sprintf("light %q intensity %.2f is below %.2f", name, intensity, policy.PointIntensityFloor),
				Path:        path + ".intensity",
				ActualValue: intensity,
				Expected:    fmt.Sprintf(">= %.2f", policy.PointIntensityFloor),
			})
		}
		if distance < policy.PointDistanceFloor {
			c.report.AddWarning(validation.Result{
				Level:       validation.LevelGuardrail,
				Rule:        policy.RulePointDistance,
				Message:     fmt.Sprintf("light %q distance %.1f is below %.1f", name, distance, policy.PointDistanceFloor),
				Path:        path + ".distance",
				ActualValue: distance,
				Expected:    fmt.Sprintf(">= %.1f", policy.PointDistanceFloor),
			})
		}
	}

	for i, l := range c.rm.Atmosphere.Lights {
		check(fmt.Sprintf("atmosphere.lights[%d]", i), l.Name, l.Intensity, l.Distance)
	}
	for _, it := range c.rm.Items() {
		if it.Compound == nil || it.Compound.Light == nil || len(it.ResolvedPositions) == 0 {
			continue
		}
		l := it.Compound.Light
		check(it.ID+".compound.light", it.ID, l.Intensity, l.Distance)
	}
}

func (c *checker) checkPostProcess() {
	pp := c.rm.Atmosphere.PostProcess
	hard := func(rule, field string, actual float64, bad bool, expected string) {
		if !bad {
			return
		}
		c.report.AddError(validation.Result{
			Level:       validation.LevelGuardrail,
			Rule:        rule,
			Message:     fmt.Sprintf("post-process %s %.2f violates %s", field, actual, expected),
			Path:        "atmosphere.post_process." + field,
			ActualValue: validation.Number(actual),
			Expected:    expected,
		})
	}

	hard(policy.RuleExposureFloor, "exposure", pp.Exposure,
		policy.Below(pp.Exposure, policy.ExposureFloor), fmt.Sprintf(">= %.2f", policy.ExposureFloor))
	hard(policy.RuleVignetteCeil, "vignette_darkness", pp.VignetteDarkness,
		policy.Above(pp.VignetteDarkness, policy.VignetteDarknessCeil), fmt.Sprintf("<= %.2f", policy.VignetteDarknessCeil))
	hard(policy.RuleBrightnessFloor, "brightness", pp.Brightness,
		policy.Below(pp.Brightness, policy.BrightnessFloor), fmt.Sprintf(">= %.2f", policy.BrightnessFloor))
	hard(policy.RuleContrastCeil, "contrast", pp.Contrast,
		policy.Above(pp.Contrast, policy.ContrastCeil), fmt.Sprintf("<= %.2f", policy.ContrastCeil))
}

func (c *checker) checkVolumetric() {
	v := c.rm.Atmosphere.Volumetric
	if v == nil || !v.Enabled || !c.finite("atmosphere.volumetric.density", v.Density) ||
		v.Density <= policy.VolumetricDensityCeil {
		return
	}
	c.report.AddWarning(validation.Result{
		Level:       validation.LevelGuardrail,
		Rule:        policy.RuleVolumetricDensity,
		Message:     fmt.Sprintf("volumetric density %.3f above %.3f will wash out the room", v.Density, policy.VolumetricDensityCeil),
		Path:        "atmosphere.volumetric.density",
		ActualValue: v.Density,
		Expected:    fmt.Sprintf("<= %.3f", policy.VolumetricDensityCeil),
	})
}

// checkRenderable rejects light and emitter numbers that cannot be
// rendered. Intensity and distance are covered by checkLightFloors.
func (c *checker) checkRenderable() {
	for i, l := range c.rm.Atmosphere.Lights {
		c.finiteVec(fmt.Sprintf("atmosphere.lights[%d].position", i), l.Position)
	}
	for i, e := range c.rm.Atmosphere.Particles {
		path := fmt.Sprintf("atmosphere.particles[%d]", i)
		c.finite(path+".rate", e.Rate)
		c.finiteVec(path+".position", e.Position)
	}
	for _, it := range c.rm.Items() {
		if it.Compound != nil && it.Compound.Particles != nil {
			c.finite(it.ID+".compound.particles.rate", it.Compound.Particles.Rate)
		}
	}
}

func (c *checker) finiteVec(path string, v geo.Vec3) {
	c.finite(path+".x", v.X)
	c.finite(path+".y", v.Y)
	c.finite(path+".z", v.Z)
}

// finite reports whether v is a usable number, recording an error when it
// is not.
func (c *checker) finite(path string, v float64) bool {
	if policy.Finite(v) {
		return true
	}
	c.report.AddError(validation.Result{
		Level:       validation.LevelSchema,
		Rule:        policy.RuleNonFinite,
		Message:     fmt.Sprintf("%s is %v, not a finite number", path, v),
		Path:        path,
		ActualValue: validation.Number(v),
	})
	return false
}
