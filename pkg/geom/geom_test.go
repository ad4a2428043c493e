package geom

import (
	"testing"

	"cogentcore.org/core/math32"
)

func TestPolygonVertexCount(t *testing.T) {
	tests := []struct {
		name   string
		coords []float32
		want   int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PolygonObject{Coords: tt.coords}
			if got := p.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPolygonTriangleCount(t *testing.T) {
	tests := []struct {
		name        string
		coords      []float32
		connections []uint32
		want        int
	}{
		{"empty", nil, nil, 0},
		{"duplicated triangle", make([]float32, 9), nil, 1},
		{"duplicated pair", make([]float32, 18), nil, 2},
		{"indexed quad", make([]float32, 12), []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PolygonObject{Coords: tt.coords, Connections: tt.connections}
			if got := p.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPolygonTriangleIndices(t *testing.T) {
	p := &PolygonObject{Coords: make([]float32, 18)}
	if got := p.Triangle(1); got != [3]int{3, 4, 5} {
		t.Errorf("Triangle(1) without connectivity = %v, want [3 4 5]", got)
	}
	p = &PolygonObject{Coords: make([]float32, 12), Connections: []uint32{0, 1, 2, 2, 3, 0}}
	if got := p.Triangle(1); got != [3]int{2, 3, 0} {
		t.Errorf("Triangle(1) with connectivity = %v, want [2 3 0]", got)
	}
}

func TestPolygonIsEmpty(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if !NewPolygonObject().IsEmpty() {
			t.Error("IsEmpty() = false for new polygon object, want true")
		}
	})
	t.Run("non-empty", func(t *testing.T) {
		p := &PolygonObject{Coords: []float32{1, 2, 3}}
		if p.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty object, want false")
		}
	})
}

func TestPointAppend(t *testing.T) {
	p := &PointObject{Size: DefaultPointSize}
	p.Append([3]float32{1, 2, 3}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1})
	p.Append([3]float32{4, 5, 6}, [3]float32{0, 1, 0}, [3]float32{0, 1, 0})
	if p.PointCount() != 2 {
		t.Fatalf("PointCount() = %d, want 2", p.PointCount())
	}
	if len(p.Colors) != 6 || len(p.Normals) != 6 {
		t.Errorf("colors/normals lengths = %d/%d, want 6/6", len(p.Colors), len(p.Normals))
	}
	if p.Coords[3] != 4 {
		t.Errorf("second point x = %v, want 4", p.Coords[3])
	}
}

func TestObjectKinds(t *testing.T) {
	objs := []struct {
		obj  Object
		want Kind
	}{
		{NewPolygonObject(), KindPolygon},
		{&PointObject{}, KindPoint},
		{&LineObject{}, KindLine},
	}
	for _, o := range objs {
		if got := o.obj.ObjectKind(); got != o.want {
			t.Errorf("%T.ObjectKind() = %v, want %v", o.obj, got, o.want)
		}
	}
}

func TestBoundsSetters(t *testing.T) {
	var b Bounds
	b.SetObject(math32.Vec3(0, 0, 0), math32.Vec3(3, 4, 5))
	b.SetExtern(math32.Vec3(-1, -1, -1), math32.Vec3(1, 1, 1))
	if b.Object.Max != math32.Vec3(3, 4, 5) {
		t.Errorf("object max = %v, want (3,4,5)", b.Object.Max)
	}
	if b.Extern.Min != math32.Vec3(-1, -1, -1) {
		t.Errorf("extern min = %v, want (-1,-1,-1)", b.Extern.Min)
	}
}
