package scene

import (
	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// Instance is one placed copy of a group's model.
type Instance struct {
	Position geo.Vec3 `json:"position"`
	Rotation float64  `json:"rotation"` // yaw in radians
}

// Group is every instance of one furnishing item.
type Group struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Layer         spec.Layer `json:"layer"`
	Material      string     `json:"material"`
	MaterialClass string     `json:"material_class,omitempty"`
	New           bool       `json:"new,omitempty"`
	Scale         float64    `json:"scale"`
	Instances     []Instance `json:"instances"`
}

// Light is a point light. Source names the item a derived light was
// expanded from and is empty for standalone lights.
type Light struct {
	ID         string   `json:"id"`
	Color      string   `json:"color"`
	Position   geo.Vec3 `json:"position"`
	Intensity  float64  `json:"intensity"`
	Distance   float64  `json:"distance"`
	Decay      float64  `json:"decay"`
	CastShadow bool     `json:"cast_shadow,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Emitter is a particle emitter. Source works as for Light.
type Emitter struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Position geo.Vec3 `json:"position"`
	Rate     float64  `json:"rate"`
	Source   string   `json:"source,omitempty"`
}

// Door is an opening in the room shell. Position is the centre of the
// opening on the floor.
type Door struct {
	ID       string    `json:"id"`
	Wall     spec.Wall `json:"wall"`
	Position geo.Vec3  `json:"position"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
}

// Scene is the assembled, clamped description of one furnished room.
type Scene struct {
	Metadata     Metadata           `json:"metadata"`
	Doors        []Door             `json:"doors"`
	Ambient      spec.AmbientLight  `json:"ambient"`
	Groups       []Group            `json:"groups"`
	Lights       []Light            `json:"lights"`
	Emitters     []Emitter          `json:"emitters"`
	PostProcess  spec.PostProcess   `json:"post_process"`
	Volumetric   *spec.Volumetric   `json:"volumetric,omitempty"`
	Placeholders []spec.Placeholder `json:"placeholders"`
	Index        Index              `json:"index"`
}

// Metadata holds room-level information.
type Metadata struct {
	RoomID     string          `json:"room_id"`
	Castle     string          `json:"castle,omitempty"`
	Type       string          `json:"type,omitempty"`
	Mood       string          `json:"mood,omitempty"`
	Dimensions spec.Dimensions `json:"dimensions"`
}

// Index organizes group IDs by category and layer for fast filtering.
type Index struct {
	Categories map[string][]string     `json:"categories"`
	Layers     map[spec.Layer][]string `json:"layers"`
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		Doors:        []Door{},
		Groups:       []Group{},
		Lights:       []Light{},
		Emitters:     []Emitter{},
		Placeholders: []spec.Placeholder{},
		Index: Index{
			Categories: make(map[string][]string),
			Layers:     make(map[spec.Layer][]string),
		},
	}
}

// InstanceCount sums instances over every group.
func (s *Scene) InstanceCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Instances)
	}
	return n
}
