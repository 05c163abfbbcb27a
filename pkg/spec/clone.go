package spec

// Clone returns a deep copy of the atmosphere block.
func (a Atmosphere) Clone() Atmosphere {
	out := a
	out.Lights = append([]PointLight(nil), a.Lights...)
	out.Particles = append([]ParticleEmitter(nil), a.Particles...)
	if a.Volumetric != nil {
		v := *a.Volumetric
		out.Volumetric = &v
	}
	return out
}

// CloneFeatures returns a deep copy of a feature registry.
func CloneFeatures(in map[string]FeatureAnchor) map[string]FeatureAnchor {
	if in == nil {
		return nil
	}
	out := make(map[string]FeatureAnchor, len(in))
	for name, f := range in {
		f.XRange = append([]float64(nil), f.XRange...)
		f.ZRange = append([]float64(nil), f.ZRange...)
		if f.Top != nil {
			top := *f.Top
			f.Top = &top
		}
		out[name] = f
	}
	return out
}

// Clone returns a deep copy of the item, including its placement rule.
func (it FurnishingItem) Clone() FurnishingItem {
	out := it
	if it.Compound != nil {
		c := *it.Compound
		if c.Light != nil {
			l := *c.Light
			c.Light = &l
		}
		if c.Particles != nil {
			p := *c.Particles
			c.Particles = &p
		}
		out.Compound = &c
	}
	if it.Placement.Positions != nil {
		out.Placement.Positions = make([]Position, len(it.Placement.Positions))
		for i, p := range it.Placement.Positions {
			out.Placement.Positions[i] = Position{
				X:        p.X,
				Y:        copyFloat(p.Y),
				Z:        p.Z,
				Rotation: copyFloat(p.Rotation),
			}
		}
	}
	return out
}

// Clone returns a deep copy of the resolved item.
func (it ResolvedItem) Clone() ResolvedItem {
	out := it
	out.FurnishingItem = it.FurnishingItem.Clone()
	if it.ResolvedPositions != nil {
		out.ResolvedPositions = make([]ResolvedPosition, len(it.ResolvedPositions))
		for i, p := range it.ResolvedPositions {
			p.Rotation = copyFloat(p.Rotation)
			out.ResolvedPositions[i] = p
		}
	}
	return out
}

// Clone returns a deep copy of the resolved manifest.
func (m *ResolvedManifest) Clone() *ResolvedManifest {
	out := &ResolvedManifest{
		Room:         m.Room,
		Features:     CloneFeatures(m.Features),
		Atmosphere:   m.Atmosphere.Clone(),
		Placeholders: append([]Placeholder(nil), m.Placeholders...),
	}
	for _, l := range Layers {
		src := m.Layer(l)
		if src == nil {
			continue
		}
		items := make([]ResolvedItem, len(src))
		for i, it := range src {
			items[i] = it.Clone()
		}
		out.SetLayer(l, items)
	}
	return out
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
