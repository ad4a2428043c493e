// Package export converts extracted geometry into the flat,
// renderer-friendly forms written to disk: indexed triangle meshes and
// point clouds as JSON, and triangle soups as STL.
package export

import (
	"fmt"

	"github.com/chazu/voxmap/pkg/geom"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshData is a triangle mesh with one normal and one color per vertex.
// Vertices has 3 floats per vertex, Indices has 3 uint32s per triangle.
type MeshData struct {
	Name     string      `json:"name"`
	Vertices []float32   `json:"vertices"`
	Normals  []float32   `json:"normals"`
	Colors   []float32   `json:"colors"`
	Indices  []uint32    `json:"indices"`
	Color    string      `json:"color,omitempty"` // hex color of single-colored meshes
	Opacity  float32     `json:"opacity"`
	Bounds   geom.Bounds `json:"bounds"`
}

// VertexCount returns the number of vertices.
func (m *MeshData) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *MeshData) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// PointData is a point cloud.
type PointData struct {
	Name    string      `json:"name"`
	Points  []float32   `json:"points"`
	Colors  []float32   `json:"colors"`
	Normals []float32   `json:"normals,omitempty"`
	Size    float32     `json:"size"`
	Bounds  geom.Bounds `json:"bounds"`
}

// Mesh flattens a polygon object so every vertex carries its own normal
// and color. Shared vertices are kept when the normal and color bindings
// allow it; per-polygon attributes force one vertex per triangle corner.
func Mesh(name string, p *geom.PolygonObject) (*MeshData, error) {
	if err := checkBindings(p); err != nil {
		return nil, fmt.Errorf("export: mesh %q: %w", name, err)
	}
	m := &MeshData{Name: name, Opacity: p.Opacity, Bounds: p.Bounds}
	if p.ColorType == geom.BindOverall && len(p.Colors) >= 3 {
		m.Color = colorful.Color{R: float64(p.Colors[0]), G: float64(p.Colors[1]), B: float64(p.Colors[2])}.Clamped().Hex()
	}

	shared := p.Connections != nil && p.NormalType != geom.BindPerPolygon && p.ColorType != geom.BindPerPolygon
	if shared {
		m.Vertices = append([]float32(nil), p.Coords...)
		m.Indices = append([]uint32(nil), p.Connections...)
		m.Normals = make([]float32, 0, len(p.Coords))
		m.Colors = make([]float32, 0, len(p.Coords))
		for v := 0; v < p.VertexCount(); v++ {
			m.Normals = appendTriple(m.Normals, vertexNormal(p, v, 0))
			m.Colors = appendTriple(m.Colors, attribute(p.Colors, p.ColorType, 0, v))
		}
		return m, nil
	}

	n := 3 * p.TriangleCount()
	m.Vertices = make([]float32, 0, 3*n)
	m.Normals = make([]float32, 0, 3*n)
	m.Colors = make([]float32, 0, 3*n)
	m.Indices = make([]uint32, 0, n)
	for t := 0; t < p.TriangleCount(); t++ {
		for j, v := range p.Triangle(t) {
			m.Vertices = appendTriple(m.Vertices, p.Vertex(v))
			m.Normals = appendTriple(m.Normals, vertexNormal(p, v, t))
			m.Colors = appendTriple(m.Colors, attribute(p.Colors, p.ColorType, t, v))
			m.Indices = append(m.Indices, uint32(t*3+j))
		}
	}
	return m, nil
}

// Points copies a point cloud.
func Points(name string, p *geom.PointObject) *PointData {
	return &PointData{
		Name:    name,
		Points:  append([]float32(nil), p.Coords...),
		Colors:  append([]float32(nil), p.Colors...),
		Normals: append([]float32(nil), p.Normals...),
		Size:    p.Size,
		Bounds:  p.Bounds,
	}
}

func checkBindings(p *geom.PolygonObject) error {
	want := func(b geom.Binding) int {
		switch b {
		case geom.BindOverall:
			return 1
		case geom.BindPerPolygon:
			return p.TriangleCount()
		default:
			return p.VertexCount()
		}
	}
	if p.IsEmpty() {
		return nil
	}
	if n := want(p.ColorType); len(p.Colors) != 3*n {
		return fmt.Errorf("%d color components for %s binding, want %d", len(p.Colors), p.ColorType, 3*n)
	}
	if n := want(p.NormalType); len(p.Normals) != 3*n {
		return fmt.Errorf("%d normal components for %s binding, want %d", len(p.Normals), p.NormalType, 3*n)
	}
	return nil
}

// attribute selects the triple bound to triangle t, vertex v.
func attribute(data []float32, b geom.Binding, t, v int) [3]float32 {
	i := 0
	switch b {
	case geom.BindPerPolygon:
		i = t
	case geom.BindPerVertex:
		i = v
	}
	if 3*i+2 >= len(data) {
		return [3]float32{}
	}
	return [3]float32{data[3*i], data[3*i+1], data[3*i+2]}
}

// vertexNormal returns a unit normal; accumulated per-vertex normals are
// normalized here.
func vertexNormal(p *geom.PolygonObject, v, t int) [3]float32 {
	n := attribute(p.Normals, p.NormalType, t, v)
	vec := r3.Vec{X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2])}
	l := r3.Norm(vec)
	if l == 0 {
		return n
	}
	vec = r3.Scale(1/l, vec)
	return [3]float32{float32(vec.X), float32(vec.Y), float32(vec.Z)}
}

func appendTriple(dst []float32, v [3]float32) []float32 {
	return append(dst, v[0], v[1], v[2])
}
