package spec

// ResolvedPosition is a concrete instance placement.
type ResolvedPosition struct {
	X        float64  `json:"x" yaml:"x"`
	Y        float64  `json:"y" yaml:"y"`
	Z        float64  `json:"z" yaml:"z"`
	Rotation *float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Yaw returns the rotation, treating an absent value as 0.
func (p ResolvedPosition) Yaw() float64 {
	if p.Rotation == nil {
		return 0
	}
	return *p.Rotation
}

// ResolvedItem is a FurnishingItem with its placement made concrete.
type ResolvedItem struct {
	FurnishingItem    `yaml:",inline"`
	Anchor            string             `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Requested         int                `json:"requested" yaml:"requested"`
	ResolvedPositions []ResolvedPosition `json:"resolved_positions" yaml:"resolved_positions"`
}

// ResolvedManifest mirrors FurnishingManifest with resolved items.
type ResolvedManifest struct {
	Room         RoomMeta                 `json:"room" yaml:"room"`
	Features     map[string]FeatureAnchor `json:"features" yaml:"features"`
	Architecture []ResolvedItem           `json:"architecture" yaml:"architecture"`
	Essential    []ResolvedItem           `json:"essential" yaml:"essential"`
	Functional   []ResolvedItem           `json:"functional" yaml:"functional"`
	Life         []ResolvedItem           `json:"life" yaml:"life"`
	Atmosphere   Atmosphere               `json:"atmosphere" yaml:"atmosphere"`
	Placeholders []Placeholder            `json:"placeholders" yaml:"placeholders"`
}

// Layer returns the resolved items of layer l.
func (m *ResolvedManifest) Layer(l Layer) []ResolvedItem {
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

// SetLayer replaces the items of layer l.
func (m *ResolvedManifest) SetLayer(l Layer, items []ResolvedItem) {
	switch l {
	case LayerArchitecture:
		m.Architecture = items
	case LayerEssential:
		m.Essential = items
	case LayerFunctional:
		m.Functional = items
	case LayerLife:
		m.Life = items
	}
}

// Items returns every resolved item across layers in layer order.
func (m *ResolvedManifest) Items() []ResolvedItem {
	var out []ResolvedItem
	for _, l := range Layers {
		out = append(out, m.Layer(l)...)
	}
	return out
}

// InstanceCount sums resolved positions over every item.
func (m *ResolvedManifest) InstanceCount() int {
	n := 0
	for _, it := range m.Items() {
		n += len(it.ResolvedPositions)
	}
	return n
}
