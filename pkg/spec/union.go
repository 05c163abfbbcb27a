package spec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type variant uint8

const (
	variantUnset variant = iota
	variantSymbol
	variantNumeric
)

// VerticalSymbol is a named vertical placement.
type VerticalSymbol string

const (
	VerticalFloor       VerticalSymbol = "floor"
	VerticalTableHeight VerticalSymbol = "table-height"
	VerticalWallMount   VerticalSymbol = "wall-mount"
	VerticalCeiling     VerticalSymbol = "ceiling"
)

// Vertical is either a named placement or an explicit height in metres.
// The zero value is unset.
type Vertical struct {
	kind   variant
	symbol VerticalSymbol
	height float64
}

// VerticalAt returns the numeric variant.
func VerticalAt(h float64) Vertical {
	return Vertical{kind: variantNumeric, height: h}
}

// VerticalNamed returns the symbolic variant.
func VerticalNamed(s VerticalSymbol) Vertical {
	return Vertical{kind: variantSymbol, symbol: s}
}

// IsZero reports whether no vertical placement was declared.
func (v Vertical) IsZero() bool { return v.kind == variantUnset }

// Symbol returns the symbolic variant.
func (v Vertical) Symbol() (VerticalSymbol, bool) {
	return v.symbol, v.kind == variantSymbol
}

// Numeric returns the numeric variant.
func (v Vertical) Numeric() (float64, bool) {
	return v.height, v.kind == variantNumeric
}

func (v Vertical) String() string {
	switch v.kind {
	case variantSymbol:
		return string(v.symbol)
	case variantNumeric:
		return fmt.Sprintf("%g", v.height)
	}
	return ""
}

// UnmarshalYAML accepts either a string symbol or a number.
func (v *Vertical) UnmarshalYAML(node *yaml.Node) error {
	kind, s, f, err := decodeUnion(node)
	if err != nil {
		return fmt.Errorf("vertical placement: %w", err)
	}
	*v = Vertical{kind: kind, symbol: VerticalSymbol(s), height: f}
	return nil
}

func (v Vertical) MarshalYAML() (any, error) { return unionValue(v.kind, string(v.symbol), v.height), nil }

func (v Vertical) MarshalJSON() ([]byte, error) {
	return json.Marshal(unionValue(v.kind, string(v.symbol), v.height))
}

// RotationSymbol is a named rotation rule.
type RotationSymbol string

const (
	RotationFaceCenter RotationSymbol = "face-center"
	RotationFaceAnchor RotationSymbol = "face-anchor"
	RotationRandom     RotationSymbol = "random"
)

// Rotation is either a named rule or a yaw in radians. The zero value is
// unset.
type Rotation struct {
	kind   variant
	symbol RotationSymbol
	angle  float64
}

// RotationAt returns the numeric variant.
func RotationAt(rad float64) Rotation {
	return Rotation{kind: variantNumeric, angle: rad}
}

// RotationNamed returns the symbolic variant.
func RotationNamed(s RotationSymbol) Rotation {
	return Rotation{kind: variantSymbol, symbol: s}
}

func (r Rotation) IsZero() bool { return r.kind == variantUnset }

func (r Rotation) Symbol() (RotationSymbol, bool) {
	return r.symbol, r.kind == variantSymbol
}

func (r Rotation) Numeric() (float64, bool) {
	return r.angle, r.kind == variantNumeric
}

func (r Rotation) String() string {
	switch r.kind {
	case variantSymbol:
		return string(r.symbol)
	case variantNumeric:
		return fmt.Sprintf("%g", r.angle)
	}
	return ""
}

// UnmarshalYAML accepts either a string symbol or a number.
func (r *Rotation) UnmarshalYAML(node *yaml.Node) error {
	kind, s, f, err := decodeUnion(node)
	if err != nil {
		return fmt.Errorf("rotation: %w", err)
	}
	*r = Rotation{kind: kind, symbol: RotationSymbol(s), angle: f}
	return nil
}

func (r Rotation) MarshalYAML() (any, error) { return unionValue(r.kind, string(r.symbol), r.angle), nil }

func (r Rotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(unionValue(r.kind, string(r.symbol), r.angle))
}

func decodeUnion(node *yaml.Node) (variant, string, float64, error) {
	if node.Kind != yaml.ScalarNode {
		return variantUnset, "", 0, fmt.Errorf("line %d: expected a name or a number", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		return variantUnset, "", 0, nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return variantUnset, "", 0, err
		}
		return variantNumeric, "", f, nil
	case "!!str":
		if node.Value == "" {
			return variantUnset, "", 0, nil
		}
		return variantSymbol, node.Value, 0, nil
	}
	return variantUnset, "", 0, fmt.Errorf("line %d: unsupported value %q", node.Line, node.Value)
}

func unionValue(kind variant, symbol string, f float64) any {
	switch kind {
	case variantSymbol:
		return symbol
	case variantNumeric:
		return f
	}
	return nil
}
