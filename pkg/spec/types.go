package spec

import (
	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
)

// DoorClearance is the free radius kept around a door opening beyond half
// its width.
const DoorClearance = 0.75

// RoomInput is the authored description of the room being furnished.
type RoomInput struct {
	ID         string     `yaml:"id" json:"id"`
	Castle     string     `yaml:"castle" json:"castle"`
	Type       string     `yaml:"type" json:"type"`
	Mood       string     `yaml:"mood" json:"mood"`
	Culture    string     `yaml:"culture" json:"culture"`
	Wealth     string     `yaml:"wealth" json:"wealth"`
	Density    string     `yaml:"density" json:"density"`
	Dimensions Dimensions `yaml:"dimensions" json:"dimensions"`
	Doors      []Door     `yaml:"doors" json:"doors"`
}

// Dimensions are the room extents in metres. The room is centred on the
// origin with the floor at Y=0.
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Depth  float64 `yaml:"depth" json:"depth"`
	Height float64 `yaml:"height" json:"height"`
}

// FloorArea returns width * depth.
func (d Dimensions) FloorArea() float64 {
	return d.Width * d.Depth
}

// Wall names one side of the room. North is -Z, east is +X.
type Wall string

const (
	WallNorth Wall = "north"
	WallSouth Wall = "south"
	WallEast  Wall = "east"
	WallWest  Wall = "west"
)

// Door is an opening in one of the four walls.
type Door struct {
	ID     string  `yaml:"id" json:"id"`
	Wall   Wall    `yaml:"wall" json:"wall"`
	Offset float64 `yaml:"offset" json:"offset"` // along the wall from its centre
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Position returns the centre of the door opening on the floor plane.
func (d Door) Position(dims Dimensions) geo.Point2D {
	switch d.Wall {
	case WallNorth:
		return geo.Pt(d.Offset, -dims.Depth/2)
	case WallSouth:
		return geo.Pt(d.Offset, dims.Depth/2)
	case WallEast:
		return geo.Pt(dims.Width/2, d.Offset)
	default:
		return geo.Pt(-dims.Width/2, d.Offset)
	}
}

// ExclusionRadius is the radius around Position kept free of furniture.
func (d Door) ExclusionRadius() float64 {
	return d.Width/2 + DoorClearance
}

// Layer identifies one of the four furnishing layers.
type Layer string

const (
	LayerArchitecture Layer = "architecture"
	LayerEssential    Layer = "essential"
	LayerFunctional   Layer = "functional"
	LayerLife         Layer = "life"
)

// Layers lists the furnishing layers in declaration order.
var Layers = []Layer{LayerArchitecture, LayerEssential, LayerFunctional, LayerLife}

// RoomMeta is the room metadata echoed into the manifest by the generator.
type RoomMeta struct {
	ID      string `yaml:"id" json:"id"`
	Mood    string `yaml:"mood" json:"mood"`
	Culture string `yaml:"culture" json:"culture"`
	Wealth  string `yaml:"wealth" json:"wealth"`
}

// FurnishingManifest is the declarative furnishing plan for one room.
type FurnishingManifest struct {
	Room         RoomMeta                 `yaml:"room" json:"room"`
	Features     map[string]FeatureAnchor `yaml:"features" json:"features"`
	Architecture []FurnishingItem         `yaml:"architecture" json:"architecture"`
	Essential    []FurnishingItem         `yaml:"essential" json:"essential"`
	Functional   []FurnishingItem         `yaml:"functional" json:"functional"`
	Life         []FurnishingItem         `yaml:"life" json:"life"`
	Atmosphere   Atmosphere               `yaml:"atmosphere" json:"atmosphere"`
	Placeholders []Placeholder            `yaml:"placeholders" json:"placeholders"`
}

// Layer returns the items declared in layer l.
func (m *FurnishingManifest) Layer(l Layer) []FurnishingItem {
	switch l {
	case LayerArchitecture:
		return m.Architecture
	case LayerEssential:
		return m.Essential
	case LayerFunctional:
		return m.Functional
	case LayerLife:
		return m.Life
	}
	return nil
}

// FeatureAnchor is a named landmark in room-local coordinates.
type FeatureAnchor struct {
	Position geo.Vec3 `yaml:"position" json:"position"`
	// XRange or ZRange, when set, is the [min, max] extent of the feature
	// along that axis (a wall run or a table edge).
	XRange          []float64 `yaml:"x_range,omitempty" json:"x_range,omitempty"`
	ZRange          []float64 `yaml:"z_range,omitempty" json:"z_range,omitempty"`
	Top             *float64  `yaml:"top,omitempty" json:"top,omitempty"`
	ExclusionRadius float64   `yaml:"exclusion_radius,omitempty" json:"exclusion_radius,omitempty"`
	Model           string    `yaml:"model,omitempty" json:"model,omitempty"`
}

// Axis names a horizontal axis.
type Axis string

const (
	AxisX Axis = "x"
	AxisZ Axis = "z"
)

// Extent returns the feature's 1-D extent. ok is false when neither range
// is declared.
func (f FeatureAnchor) Extent() (axis Axis, lo, hi float64, ok bool) {
	switch {
	case len(f.XRange) == 2:
		return AxisX, f.XRange[0], f.XRange[1], true
	case len(f.ZRange) == 2:
		return AxisZ, f.ZRange[0], f.ZRange[1], true
	}
	return "", 0, 0, false
}

// TopHeight returns the declared top surface, or the anchor's own Y.
func (f FeatureAnchor) TopHeight() float64 {
	if f.Top != nil {
		return *f.Top
	}
	return f.Position.Y
}

// FurnishingItem is one declared kind of object and where it goes.
type FurnishingItem struct {
	ID            string        `yaml:"id" json:"id"`
	New           bool          `yaml:"new" json:"new"`
	Description   string        `yaml:"description" json:"description"`
	Category      string        `yaml:"category" json:"category"`
	Material      string        `yaml:"material" json:"material"`
	MaterialClass string        `yaml:"material_class,omitempty" json:"material_class,omitempty"`
	Scale         float64       `yaml:"scale" json:"scale"`
	Compound      *Compound     `yaml:"compound,omitempty" json:"compound,omitempty"`
	Placement     PlacementRule `yaml:"placement" json:"placement"`
}

// Compound declares a light and/or particle emitter co-located with every
// instance of an item.
type Compound struct {
	Light     *CompoundLight     `yaml:"light,omitempty" json:"light,omitempty"`
	Particles *CompoundParticles `yaml:"particles,omitempty" json:"particles,omitempty"`
}

type CompoundLight struct {
	Color     string  `yaml:"color" json:"color"`
	Intensity float64 `yaml:"intensity" json:"intensity"`
	Distance  float64 `yaml:"distance" json:"distance"`
	Decay     float64 `yaml:"decay" json:"decay"`
	YOffset   float64 `yaml:"y_offset" json:"y_offset"`
}

type CompoundParticles struct {
	Kind    string  `yaml:"kind" json:"kind"`
	Rate    float64 `yaml:"rate" json:"rate"`
	YOffset float64 `yaml:"y_offset" json:"y_offset"`
}

// Strategy selects a placement algorithm.
type Strategy string

const (
	StrategyArray        Strategy = "array"
	StrategyAtAnchor     Strategy = "at-anchor"
	StrategyOnSurface    Strategy = "on-surface"
	StrategyAlongSurface Strategy = "along-surface"
	StrategyScattered    Strategy = "scattered"
)

// Known reports whether s is a recognised strategy.
func (s Strategy) Known() bool {
	switch s {
	case StrategyArray, StrategyAtAnchor, StrategyOnSurface, StrategyAlongSurface, StrategyScattered:
		return true
	}
	return false
}

// NeedsAnchor reports whether the strategy is driven by a feature anchor.
func (s Strategy) NeedsAnchor() bool {
	return s == StrategyAtAnchor || s == StrategyOnSurface || s == StrategyAlongSurface
}

// PlacementRule declares how an item's instances are positioned.
type PlacementRule struct {
	Strategy     Strategy   `yaml:"strategy" json:"strategy"`
	Anchor       string     `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Offset       geo.Vec3   `yaml:"offset,omitempty" json:"offset"`
	Count        int        `yaml:"count,omitempty" json:"count,omitempty"`
	Spacing      float64    `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	Density      float64    `yaml:"density,omitempty" json:"density,omitempty"` // instances per m², scattered only
	Rotation     Rotation   `yaml:"rotation,omitempty" json:"rotation"`
	ExcludeDoors bool       `yaml:"exclude_doors,omitempty" json:"exclude_doors,omitempty"`
	Y            Vertical   `yaml:"y,omitempty" json:"y"`
	Positions    []Position `yaml:"positions,omitempty" json:"positions,omitempty"`
}

// Position is an author-supplied coordinate for the array strategy.
// Y and Rotation are optional and defaulted by the resolver.
type Position struct {
	X        float64  `yaml:"x" json:"x"`
	Y        *float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Z        float64  `yaml:"z" json:"z"`
	Rotation *float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
}

// Atmosphere holds scene-wide lighting, particles and post-processing.
type Atmosphere struct {
	Ambient     AmbientLight      `yaml:"ambient" json:"ambient"`
	Lights      []PointLight      `yaml:"lights" json:"lights"`
	Particles   []ParticleEmitter `yaml:"particles" json:"particles"`
	PostProcess PostProcess       `yaml:"post_process" json:"post_process"`
	Volumetric  *Volumetric       `yaml:"volumetric,omitempty" json:"volumetric,omitempty"`
}

type AmbientLight struct {
	Color     string  `yaml:"color" json:"color"`
	Intensity float64 `yaml:"intensity" json:"intensity"`
}

type PointLight struct {
	Name       string   `yaml:"name" json:"name"`
	Color      string   `yaml:"color" json:"color"`
	Position   geo.Vec3 `yaml:"position" json:"position"`
	Intensity  float64  `yaml:"intensity" json:"intensity"`
	Distance   float64  `yaml:"distance" json:"distance"`
	Decay      float64  `yaml:"decay" json:"decay"`
	CastShadow bool     `yaml:"cast_shadow" json:"cast_shadow"`
}

type ParticleEmitter struct {
	Name     string   `yaml:"name" json:"name"`
	Kind     string   `yaml:"kind" json:"kind"`
	Position geo.Vec3 `yaml:"position" json:"position"`
	Rate     float64  `yaml:"rate" json:"rate"`
}

// PostProcess holds screen-space grading parameters. Exposure and Contrast
// are multipliers (1 = neutral); Brightness is additive (0 = neutral).
type PostProcess struct {
	Exposure         float64 `yaml:"exposure" json:"exposure"`
	VignetteDarkness float64 `yaml:"vignette_darkness" json:"vignette_darkness"`
	Brightness       float64 `yaml:"brightness" json:"brightness"`
	Contrast         float64 `yaml:"contrast" json:"contrast"`
	BloomIntensity   float64 `yaml:"bloom_intensity" json:"bloom_intensity"`
}

type Volumetric struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Density float64 `yaml:"density" json:"density"`
	Color   string  `yaml:"color" json:"color"`
	Samples int     `yaml:"samples" json:"samples"`
}

// Placeholder marks where a character will stand at runtime.
type Placeholder struct {
	Name     string   `yaml:"name" json:"name"`
	Position geo.Vec3 `yaml:"position" json:"position"`
	Rotation float64  `yaml:"rotation" json:"rotation"`
	Height   float64  `yaml:"height" json:"height"`
}
