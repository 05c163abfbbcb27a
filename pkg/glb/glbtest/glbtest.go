// Package glbtest builds minimal GLB containers for tests.
package glbtest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Container assembles a GLB from a raw JSON chunk. chunkType overrides the
// first chunk's type tag when non-zero.
func Container(jsonChunk []byte, chunkType uint32) []byte {
	if chunkType == 0 {
		chunkType = 0x4E4F534A
	}
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	var buf bytes.Buffer
	total := uint32(12 + 8 + len(jsonChunk))
	binary.Write(&buf, binary.LittleEndian, uint32(0x46546C67))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, total)
	binary.Write(&buf, binary.LittleEndian, uint32(len(jsonChunk)))
	binary.Write(&buf, binary.LittleEndian, chunkType)
	buf.Write(jsonChunk)
	return buf.Bytes()
}

// Box returns a GLB whose single mesh references one POSITION accessor with
// the given extrema.
func Box(min, max [3]float64) []byte {
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"meshes": []any{map[string]any{"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}}}}},
		"accessors": []any{map[string]any{
			"type": "VEC3", "componentType": 5126, "count": 8,
			"min": min[:], "max": max[:],
		}},
	}
	data, _ := json.Marshal(doc)
	return Container(data, 0)
}

// WriteBox writes Box(min, max) to dir/name and returns the full path.
func WriteBox(t testing.TB, dir, name string, min, max [3]float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, Box(min, max), 0o644); err != nil {
		t.Fatalf("write glb: %v", err)
	}
	return path
}
