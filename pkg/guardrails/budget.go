package guardrails

import (
	"fmt"

	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

func (c *checker) checkTriangles() {
	total := 0
	for _, it := range c.rm.Items() {
		total += policy.TrianglesFor(it.Category) * len(it.ResolvedPositions)
	}
	c.report.Stats.EstimatedTriangles = total
	c.report.Stats.TriangleBudget = c.tier.TriangleBudget

	if c.tier.TriangleBudget > 0 && total > c.tier.TriangleBudget {
		c.report.AddWarning(validation.Result{
			Level:       validation.LevelBudget,
			Rule:        policy.RuleTriangleBudget,
			Message:     fmt.Sprintf("estimated %d triangles exceed the %s budget of %d", total, c.tier.Name, c.tier.TriangleBudget),
			ActualValue: total,
			Expected:    fmt.Sprintf("<= %d", c.tier.TriangleBudget),
			Suggestions: []string{"reduce scattered counts or move to a denser tier"},
		})
	}
}

func (c *checker) checkLifeLayer() {
	if n := len(c.rm.Life); n < policy.MinLifeItems {
		c.report.AddWarning(validation.Result{
			Level:       validation.LevelBudget,
			Rule:        policy.RuleLifeLayer,
			Message:     fmt.Sprintf("life layer has %d items, want at least %d", n, policy.MinLifeItems),
			Path:        "life",
			ActualValue: n,
			Expected:    fmt.Sprintf(">= %d", policy.MinLifeItems),
		})
	}
}

func (c *checker) checkDensity() {
	instances := c.rm.InstanceCount()
	area := c.room.Dimensions.FloorArea()
	density := 0.0
	if area > 0 {
		density = float64(instances) / area
	}
	c.report.Stats.InstanceCount = instances
	c.report.Stats.Density = density
	c.report.Stats.TargetDensity = c.tier.TargetDensity

	want := c.tier.TargetDensity * policy.DensityShortfall
	if density < want {
		c.report.AddWarning(validation.Result{
			Level: validation.LevelBudget,
			Rule:  policy.RuleDensity,
			Message: fmt.Sprintf("%d instances over %.1f m² is %.2f/m², under half the %s target of %.2f/m²",
				instances, area, density, c.tier.Name, c.tier.TargetDensity),
			ActualValue: density,
			Expected:    fmt.Sprintf(">= %.2f", want),
		})
	}
}

func (c *checker) checkUnderDelivery() {
	for _, layer := range spec.Layers {
		for _, it := range c.rm.Layer(layer) {
			if it.Placement.Strategy != spec.StrategyScattered {
				continue
			}
			got := len(it.ResolvedPositions)
			if got >= it.Requested {
				continue
			}
			c.report.AddWarning(validation.Result{
				Level:       validation.LevelSpatial,
				Rule:        policy.RuleUnderDelivery,
				Message:     fmt.Sprintf("%s: scattered %d of %d requested instances", it.ID, got, it.Requested),
				Path:        fmt.Sprintf("%s.%s.placement.count", layer, it.ID),
				ActualValue: got,
				Expected:    fmt.Sprintf("%d", it.Requested),
				Suggestions: []string{"lower the count or free up floor space"},
			})
		}
	}
}

func (c *checker) checkMaterialClasses() {
	for _, it := range c.rm.Items() {
		if it.MaterialClass == "" || policy.KnownMaterialClass(it.MaterialClass) {
			continue
		}
		c.report.AddInfo(validation.Result{
			Level:       validation.LevelBudget,
			Rule:        policy.RuleMaterialClass,
			Message:     fmt.Sprintf("%s uses unknown material class %q", it.ID, it.MaterialClass),
			Path:        it.ID + ".material_class",
			ActualValue: it.MaterialClass,
			Suggestions: append([]string(nil), policy.MaterialClasses...),
		})
	}
}
