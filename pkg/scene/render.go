package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"
)

// Format selects how instance position lists are laid out. It does not
// change the emitted values.
type Format string

const (
	// FormatCompact writes each group's instances on a single line.
	FormatCompact Format = "compact"
	// FormatExpanded writes one instance per line.
	FormatExpanded Format = "expanded"
)

// ParseFormat returns the format named s. The empty string selects
// FormatExpanded.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatExpanded:
		return FormatExpanded, nil
	case FormatCompact:
		return FormatCompact, nil
	}
	return "", fmt.Errorf("unknown scene format %q (want compact or expanded)", s)
}

// Render writes s as a TypeScript module. Output depends only on s and f.
func Render(w io.Writer, s *Scene, f Format) error {
	if s == nil {
		return fmt.Errorf("rendering scene: scene is nil")
	}
	if f == "" {
		f = FormatExpanded
	}
	data := struct {
		*Scene
		Compact bool
	}{s, f == FormatCompact}
	if err := moduleTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering scene %s: %w", s.Metadata.RoomID, err)
	}
	return nil
}

// num formats a float with at most three decimals and no negative zero.
func num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// str quotes s as a TypeScript string literal.
func str(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func vec(x, y, z float64) string {
	return fmt.Sprintf("{ x: %s, y: %s, z: %s }", num(x), num(y), num(z))
}

func instance(in Instance) string {
	return fmt.Sprintf("{ x: %s, y: %s, z: %s, rotation: %s }",
		num(in.Position.X), num(in.Position.Y), num(in.Position.Z), num(in.Rotation))
}

func instancesInline(ins []Instance) string {
	parts := make([]string, len(ins))
	for i, in := range ins {
		parts[i] = instance(in)
	}
	return strings.Join(parts, ", ")
}

var moduleTemplate = template.Must(template.New("scene").Funcs(template.FuncMap{
	"num":             num,
	"str":             str,
	"vec":             vec,
	"instance":        instance,
	"instancesInline": instancesInline,
}).Parse(`// Code generated by furnish. DO NOT EDIT.
// Room: {{.Metadata.RoomID}}{{with .Metadata.Castle}} ({{.}}){{end}}

import type { RoomScene } from '../types/scene';

export const scene: RoomScene = {
  id: {{str .Metadata.RoomID}},
  dimensions: { width: {{num .Metadata.Dimensions.Width}}, depth: {{num .Metadata.Dimensions.Depth}}, height: {{num .Metadata.Dimensions.Height}} },
  doors: [
{{- range .Doors}}
    { id: {{str .ID}}, wall: {{str (print .Wall)}}, position: {{vec .Position.X .Position.Y .Position.Z}}, width: {{num .Width}}, height: {{num .Height}} },
{{- end}}
  ],
  ambient: { color: {{str .Ambient.Color}}, intensity: {{num .Ambient.Intensity}} },
  groups: [
{{- range .Groups}}
    {
      id: {{str .ID}},
      category: {{str .Category}},
      layer: {{str (print .Layer)}},
      material: {{str .Material}},
{{- with .MaterialClass}}
      materialClass: {{str .}},
{{- end}}
{{- if .New}}
      isNew: true,
{{- end}}
      scale: {{num .Scale}},
{{- if $.Compact}}
      instances: [{{instancesInline .Instances}}],
{{- else}}
      instances: [
{{- range .Instances}}
        {{instance .}},
{{- end}}
      ],
{{- end}}
    },
{{- end}}
  ],
  lights: [
{{- range .Lights}}
    { id: {{str .ID}}, color: {{str .Color}}, position: {{vec .Position.X .Position.Y .Position.Z}}, intensity: {{num .Intensity}}, distance: {{num .Distance}}, decay: {{num .Decay}}{{if .CastShadow}}, castShadow: true{{end}}{{with .Source}}, source: {{str .}}{{end}} },
{{- end}}
  ],
  particles: [
{{- range .Emitters}}
    { id: {{str .ID}}, kind: {{str .Kind}}, position: {{vec .Position.X .Position.Y .Position.Z}}, rate: {{num .Rate}}{{with .Source}}, source: {{str .}}{{end}} },
{{- end}}
  ],
  postProcess: {
    exposure: {{num .PostProcess.Exposure}},
    vignetteDarkness: {{num .PostProcess.VignetteDarkness}},
    brightness: {{num .PostProcess.Brightness}},
    contrast: {{num .PostProcess.Contrast}},
    bloomIntensity: {{num .PostProcess.BloomIntensity}},
  },
{{- with .Volumetric}}
  volumetric: { enabled: {{.Enabled}}, density: {{num .Density}}, color: {{str .Color}}, samples: {{.Samples}} },
{{- else}}
  volumetric: null,
{{- end}}
  placeholders: [
{{- range .Placeholders}}
    { name: {{str .Name}}, position: {{vec .Position.X .Position.Y .Position.Z}}, rotation: {{num .Rotation}}, height: {{num .Height}} },
{{- end}}
  ],
};

export default scene;
`))
