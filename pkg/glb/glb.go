// Package glb recovers axis-aligned bounds from binary glTF (GLB) assets
// without loading any geometry. Only the JSON chunk is read; bounds come
// from the min/max declared on POSITION accessors.
package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
)

const (
	magic         = 0x46546C67 // "glTF"
	chunkJSON     = 0x4E4F534A // "JSON"
	headerSize    = 12
	chunkHeadSize = 8

	// maxJSONChunk guards against corrupt length fields.
	maxJSONChunk = 64 << 20
)

// FormatError reports a file that is not a well-formed GLB container.
type FormatError struct {
	File   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("glb %s: %s", e.File, e.Reason)
}

// NoDataError reports a well-formed GLB that declares no usable POSITION
// extrema.
type NoDataError struct {
	File string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("glb %s: no POSITION accessor declares min/max", e.File)
}

// document is the subset of the glTF JSON schema needed for bounds.
type document struct {
	Meshes []struct {
		Primitives []struct {
			Attributes map[string]int `json:"attributes"`
		} `json:"primitives"`
	} `json:"meshes"`
	Accessors []struct {
		Type string    `json:"type"`
		Min  []float64 `json:"min"`
		Max  []float64 `json:"max"`
	} `json:"accessors"`
}

// ReadBounds returns the union of every referenced POSITION accessor's
// declared extrema in the GLB file at path.
func ReadBounds(path string) (geo.Bounds, error) {
	f, err := os.Open(path)
	if err != nil {
		return geo.Bounds{}, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a GLB stream. name identifies the stream in errors.
func Decode(r io.Reader, name string) (geo.Bounds, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return geo.Bounds{}, &FormatError{File: name, Reason: "truncated header"}
	}
	if binary.LittleEndian.Uint32(header[0:4]) != magic {
		return geo.Bounds{}, &FormatError{File: name, Reason: "bad magic, not a GLB container"}
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != 2 {
		return geo.Bounds{}, &FormatError{File: name, Reason: fmt.Sprintf("unsupported container version %d", v)}
	}

	var chunk [chunkHeadSize]byte
	if _, err := io.ReadFull(r, chunk[:]); err != nil {
		return geo.Bounds{}, &FormatError{File: name, Reason: "truncated chunk header"}
	}
	length := binary.LittleEndian.Uint32(chunk[0:4])
	if typ := binary.LittleEndian.Uint32(chunk[4:8]); typ != chunkJSON {
		return geo.Bounds{}, &FormatError{File: name, Reason: fmt.Sprintf("first chunk type 0x%08X is not JSON", typ)}
	}
	if length == 0 || length > maxJSONChunk {
		return geo.Bounds{}, &FormatError{File: name, Reason: fmt.Sprintf("invalid JSON chunk length %d", length)}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return geo.Bounds{}, &FormatError{File: name, Reason: "truncated JSON chunk"}
	}
	// Chunks are padded with spaces to 4-byte alignment.
	body = bytes.TrimRight(body, " \x00")

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return geo.Bounds{}, &FormatError{File: name, Reason: fmt.Sprintf("JSON chunk: %v", err)}
	}
	return positionBounds(&doc, name)
}

func positionBounds(doc *document, name string) (geo.Bounds, error) {
	referenced := make(map[int]bool)
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if idx, ok := prim.Attributes["POSITION"]; ok {
				referenced[idx] = true
			}
		}
	}

	box := geo.EmptyBounds()
	for idx := range referenced {
		if idx < 0 || idx >= len(doc.Accessors) {
			continue
		}
		acc := doc.Accessors[idx]
		if len(acc.Min) < 3 || len(acc.Max) < 3 {
			continue
		}
		box = box.Union(geo.Bounds{
			Min: geo.Vec3{X: acc.Min[0], Y: acc.Min[1], Z: acc.Min[2]},
			Max: geo.Vec3{X: acc.Max[0], Y: acc.Max[1], Z: acc.Max[2]},
		})
	}
	if box.IsEmpty() {
		return geo.Bounds{}, &NoDataError{File: name}
	}
	return box, nil
}
