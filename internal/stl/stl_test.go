package stl

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func writeBinarySTL(t *testing.T, tris [][3][3]float32) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "part.stl")

	var buf bytes.Buffer
	buf.Write(make([]byte, binaryHeaderSize))
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(tris)))
	buf.Write(countBuf)

	for _, tri := range tris {
		buf.Write(make([]byte, 12)) // normal, unused by the loader
		for _, v := range tri {
			for _, c := range v {
				b := make([]byte, 4)
				binary.LittleEndian.PutUint32(b, math.Float32bits(c))
				buf.Write(b)
			}
		}
		buf.Write(make([]byte, 2)) // attribute byte count
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write stl: %v", err)
	}
	return path
}

func TestLoadBinarySTL(t *testing.T) {
	tris := [][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}},
	}
	path := writeBinarySTL(t, tris)

	mesh, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(mesh.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(mesh.Triangles))
	}
}

func TestLoadASCIISTL(t *testing.T) {
	content := `solid test
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid test
`
	dir := t.TempDir()
	path := filepath.Join(dir, "part.stl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ascii stl: %v", err)
	}

	mesh, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(mesh.Triangles) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(mesh.Triangles))
	}
}

func TestAnalyzeMeshUndercut(t *testing.T) {
	downTri, ok := geometry.NewTriangle(
		geometry.Point3D{X: 0, Y: 0, Z: 1},
		geometry.Point3D{X: 0, Y: 1, Z: 0},
		geometry.Point3D{X: 1, Y: 0, Z: 0},
	)
	if !ok {
		t.Fatal("expected non-degenerate triangle")
	}
	mesh := Mesh{Triangles: []geometry.Triangle{downTri}}
	result := AnalyzeMesh(mesh, MachiningParams{})
	// This winding gives the normal (-1,-1,-1)/sqrt(3), so n.z < -0.1.
	if result.UndercutTriangles != 1 {
		t.Fatalf("expected the downward-facing triangle to count as an undercut, got %d", result.UndercutTriangles)
	}
	if result.MaxDepthRequired < 0 {
		t.Fatalf("unexpected negative depth: %v", result.MaxDepthRequired)
	}
}

func TestAnalyzeMeshDepthFit(t *testing.T) {
	tri, _ := geometry.NewTriangle(
		geometry.Point3D{X: 0, Y: 0, Z: 0},
		geometry.Point3D{X: 1, Y: 0, Z: 0},
		geometry.Point3D{X: 0, Y: 1, Z: 5},
	)
	mesh := Mesh{Triangles: []geometry.Triangle{tri}}
	result := AnalyzeMesh(mesh, MachiningParams{MaterialDepth: 3})
	if result.Valid {
		t.Fatalf("expected depth-exceeds-material to fail validation")
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected an error describing the depth mismatch")
	}
}

func TestMachiningLayers(t *testing.T) {
	tri, _ := geometry.NewTriangle(
		geometry.Point3D{X: 0, Y: 0, Z: -10},
		geometry.Point3D{X: 1, Y: 0, Z: 0},
		geometry.Point3D{X: 0, Y: 1, Z: 0},
	)
	layers := MachiningLayers([]geometry.Triangle{tri}, 2.5)
	if len(layers) == 0 {
		t.Fatalf("expected non-empty machining layers")
	}
	if layers[len(layers)-1] != -10 {
		t.Fatalf("expected final layer to reach the minimum Z, got %v", layers[len(layers)-1])
	}
}
