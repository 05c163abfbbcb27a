// Package policy holds the numeric guardrails a generated room must respect
// at runtime. The validator reports against them and the scene writer
// clamps to them again.
package policy

import (
	"math"
	"strings"
)

// Hard limits. A scene violating these renders unusably dark or exceeds
// the runtime's forward-lighting capacity.
const (
	AmbientFloor         = 0.45
	MaxLights            = 12
	ExposureFloor        = 0.9
	VignetteDarknessCeil = 0.55
	BrightnessFloor      = -0.1
	ContrastCeil         = 1.4
)

// Soft limits.
const (
	PointIntensityFloor   = 0.3
	PointDistanceFloor    = 4.0
	VolumetricDensityCeil = 0.04
	MinLifeItems          = 6
	// DensityShortfall is the fraction of the tier target below which a
	// room is flagged as sparse.
	DensityShortfall = 0.5
)

// Spatial tolerances in metres.
const (
	DefaultMargin     = 0.3
	SurfaceMargin     = 0.1
	SurfaceYTolerance = 0.08
	// MaxModelBytes is the per-asset GLB size budget.
	MaxModelBytes = 100 * 1024
)

// Rule names carried on validation results.
const (
	RuleAmbientFloor      = "ambient-floor"
	RuleLightCap          = "light-cap"
	RuleDerivedLightCap   = "derived-light-cap"
	RulePointIntensity    = "point-intensity-floor"
	RulePointDistance     = "point-distance-floor"
	RuleExposureFloor     = "exposure-floor"
	RuleVignetteCeil      = "vignette-darkness-ceiling"
	RuleBrightnessFloor   = "brightness-floor"
	RuleContrastCeil      = "contrast-ceiling"
	RuleVolumetricDensity = "volumetric-density-ceiling"
	RuleTriangleBudget    = "triangle-budget"
	RuleBounds            = "room-bounds"
	RuleSurfaceOverflow   = "surface-overflow"
	RuleSurfaceHeight     = "surface-height"
	RuleModelUnreadable   = "model-unreadable"
	RuleModelSize         = "model-size"
	RuleLifeLayer         = "life-layer-minimum"
	RuleDensity           = "density-target"
	RuleUnderDelivery     = "scatter-under-delivery"
	RuleMaterialClass     = "material-class"
	RulePlaceholderBounds = "placeholder-bounds"
	RuleNonFinite         = "non-finite-value"
)

// DensityTier is a named preset for target instance density and triangle
// budget.
type DensityTier struct {
	Name           string  `json:"name"`
	TargetDensity  float64 `json:"target_density"` // instances per m² of floor
	TriangleBudget int     `json:"triangle_budget"`
}

var tiers = []DensityTier{
	{Name: "sparse", TargetDensity: 0.3, TriangleBudget: 60_000},
	{Name: "standard", TargetDensity: 0.6, TriangleBudget: 120_000},
	{Name: "dense", TargetDensity: 1.0, TriangleBudget: 200_000},
	{Name: "lavish", TargetDensity: 1.4, TriangleBudget: 300_000},
}

// DefaultTier is used when a room names no tier or an unknown one.
const DefaultTier = "standard"

// Tier looks up a density tier by name. ok is false for unknown names, in
// which case the default tier is returned.
func Tier(name string) (DensityTier, bool) {
	for _, t := range tiers {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	for _, t := range tiers {
		if t.Name == DefaultTier {
			return t, false
		}
	}
	return tiers[0], false
}

// Tiers returns every known tier, sparsest first.
func Tiers() []DensityTier {
	return append([]DensityTier(nil), tiers...)
}

// Per-instance triangle estimates by size class.
const (
	trisSmall   = 300
	trisMedium  = 1200
	trisLarge   = 2500
	trisDecal   = 24
	trisDefault = 800
)

var categoryTriangles = map[string]int{
	"structural":     trisLarge,
	"furniture":      trisMedium,
	"lighting":       trisMedium,
	"decor":          trisMedium,
	"tableware":      trisSmall,
	"textile":        trisSmall,
	"surface-detail": trisDecal,
	"ambient":        trisSmall,
}

// TrianglesFor returns the per-instance triangle estimate for a category.
func TrianglesFor(category string) int {
	if n, ok := categoryTriangles[strings.ToLower(category)]; ok {
		return n
	}
	return trisDefault
}

// CategoryOrder is the stable order instance groups are emitted in:
// structural first, ephemeral last.
var CategoryOrder = []string{
	"structural",
	"furniture",
	"lighting",
	"decor",
	"tableware",
	"textile",
	"surface-detail",
	"ambient",
}

// CategoryRank returns the position of category in CategoryOrder, or
// len(CategoryOrder) for unknown categories.
func CategoryRank(category string) int {
	c := strings.ToLower(category)
	for i, known := range CategoryOrder {
		if known == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// MaterialClasses are the material families the asset pipeline produces.
var MaterialClasses = []string{
	"northern_stone",
	"ironwood",
	"dark_iron",
	"leather",
	"ceramic",
	"fabric",
}

// KnownMaterialClass reports whether class is one of MaterialClasses.
func KnownMaterialClass(class string) bool {
	for _, c := range MaterialClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Below reports whether v violates a floor of lo. A non-finite v always
// does.
func Below(v, lo float64) bool {
	return !Finite(v) || v < lo
}

// Above reports whether v violates a ceiling of hi. A non-finite v always
// does.
func Above(v, hi float64) bool {
	return !Finite(v) || v > hi
}

// Floor raises v to at least lo. A non-finite v is replaced by lo.
func Floor(v, lo float64) (float64, bool) {
	if Below(v, lo) {
		return lo, true
	}
	return v, false
}

// Ceil lowers v to at most hi. A non-finite v is replaced by hi.
func Ceil(v, hi float64) (float64, bool) {
	if Above(v, hi) {
		return hi, true
	}
	return v, false
}
