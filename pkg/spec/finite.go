package spec

import (
	"fmt"
	"math"
	"sort"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
)

// number is one numeric field awaiting the finiteness check.
type number struct {
	field string
	value float64
}

func vec(field string, v geo.Vec3) []number {
	return []number{{field + ".x", v.X}, {field + ".y", v.Y}, {field + ".z", v.Z}}
}

// firstNonFinite returns the first NaN or infinite value in nums.
func firstNonFinite(nums []number) (number, bool) {
	for _, n := range nums {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return n, true
		}
	}
	return number{}, false
}

func roomNumbers(r *RoomInput) []number {
	nums := []number{
		{"dimensions.width", r.Dimensions.Width},
		{"dimensions.depth", r.Dimensions.Depth},
		{"dimensions.height", r.Dimensions.Height},
	}
	for i, d := range r.Doors {
		p := fmt.Sprintf("doors[%d]", i)
		nums = append(nums,
			number{p + ".offset", d.Offset},
			number{p + ".width", d.Width},
			number{p + ".height", d.Height},
		)
	}
	return nums
}

// manifestNumbers lists every authored number in m that reaches placement
// or the scene.
func manifestNumbers(m *FurnishingManifest) []number {
	var nums []number

	for _, name := range sortedKeys(m.Features) {
		f := m.Features[name]
		p := "features." + name
		nums = append(nums, vec(p+".position", f.Position)...)
		for i, v := range f.XRange {
			nums = append(nums, number{fmt.Sprintf("%s.x_range[%d]", p, i), v})
		}
		for i, v := range f.ZRange {
			nums = append(nums, number{fmt.Sprintf("%s.z_range[%d]", p, i), v})
		}
		if f.Top != nil {
			nums = append(nums, number{p + ".top", *f.Top})
		}
		nums = append(nums, number{p + ".exclusion_radius", f.ExclusionRadius})
	}

	for _, layer := range Layers {
		for i, it := range m.Layer(layer) {
			p := fmt.Sprintf("%s[%d]", layer, i)
			nums = append(nums, number{p + ".scale", it.Scale})
			if c := it.Compound; c != nil {
				if l := c.Light; l != nil {
					nums = append(nums,
						number{p + ".compound.light.intensity", l.Intensity},
						number{p + ".compound.light.distance", l.Distance},
						number{p + ".compound.light.decay", l.Decay},
						number{p + ".compound.light.y_offset", l.YOffset},
					)
				}
				if pc := c.Particles; pc != nil {
					nums = append(nums,
						number{p + ".compound.particles.rate", pc.Rate},
						number{p + ".compound.particles.y_offset", pc.YOffset},
					)
				}
			}
			nums = append(nums, placementNumbers(p+".placement", it.Placement)...)
		}
	}

	a := m.Atmosphere
	nums = append(nums, number{"atmosphere.ambient.intensity", a.Ambient.Intensity})
	for i, l := range a.Lights {
		p := fmt.Sprintf("atmosphere.lights[%d]", i)
		nums = append(nums, vec(p+".position", l.Position)...)
		nums = append(nums,
			number{p + ".intensity", l.Intensity},
			number{p + ".distance", l.Distance},
			number{p + ".decay", l.Decay},
		)
	}
	for i, e := range a.Particles {
		p := fmt.Sprintf("atmosphere.particles[%d]", i)
		nums = append(nums, vec(p+".position", e.Position)...)
		nums = append(nums, number{p + ".rate", e.Rate})
	}
	pp := a.PostProcess
	nums = append(nums,
		number{"atmosphere.post_process.exposure", pp.Exposure},
		number{"atmosphere.post_process.vignette_darkness", pp.VignetteDarkness},
		number{"atmosphere.post_process.brightness", pp.Brightness},
		number{"atmosphere.post_process.contrast", pp.Contrast},
		number{"atmosphere.post_process.bloom_intensity", pp.BloomIntensity},
	)
	if v := a.Volumetric; v != nil {
		nums = append(nums, number{"atmosphere.volumetric.density", v.Density})
	}

	for i, ph := range m.Placeholders {
		p := fmt.Sprintf("placeholders[%d]", i)
		nums = append(nums, vec(p+".position", ph.Position)...)
		nums = append(nums,
			number{p + ".rotation", ph.Rotation},
			number{p + ".height", ph.Height},
		)
	}
	return nums
}

func placementNumbers(path string, p PlacementRule) []number {
	nums := vec(path+".offset", p.Offset)
	nums = append(nums,
		number{path + ".spacing", p.Spacing},
		number{path + ".density", p.Density},
	)
	if v, ok := p.Rotation.Numeric(); ok {
		nums = append(nums, number{path + ".rotation", v})
	}
	if v, ok := p.Y.Numeric(); ok {
		nums = append(nums, number{path + ".y", v})
	}
	for i, pos := range p.Positions {
		pp := fmt.Sprintf("%s.positions[%d]", path, i)
		nums = append(nums, number{pp + ".x", pos.X}, number{pp + ".z", pos.Z})
		if pos.Y != nil {
			nums = append(nums, number{pp + ".y", *pos.Y})
		}
		if pos.Rotation != nil {
			nums = append(nums, number{pp + ".rotation", *pos.Rotation})
		}
	}
	return nums
}

func sortedKeys(m map[string]FeatureAnchor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
