package geom

// PolygonType is the primitive described by a PolygonObject's connectivity.
type PolygonType int

const (
	Triangle PolygonType = iota
)

// Binding says how many colors or normals a PolygonObject carries.
type Binding int

const (
	BindOverall    Binding = iota // one value for the whole object
	BindPerPolygon                // one value per triangle
	BindPerVertex                 // one value per vertex
)

func (b Binding) String() string {
	switch b {
	case BindOverall:
		return "overall"
	case BindPerPolygon:
		return "per-polygon"
	case BindPerVertex:
		return "per-vertex"
	default:
		return "unknown"
	}
}

// PolygonObject is a triangle surface. Coords has 3 floats per vertex.
// When Connections is nil every triangle owns three consecutive vertices;
// otherwise Connections holds 3 indices per triangle into a shared pool.
// Colors are RGB triples in [0,1] and normals are xyz triples, both laid
// out according to their binding.
type PolygonObject struct {
	Coords      []float32   `json:"coords"`
	Connections []uint32    `json:"connections,omitempty"`
	Colors      []float32   `json:"colors"`
	Normals     []float32   `json:"normals"`
	Opacity     float32     `json:"opacity"`
	PolygonType PolygonType `json:"polygonType"`
	ColorType   Binding     `json:"colorType"`
	NormalType  Binding     `json:"normalType"`
	Bounds      Bounds      `json:"bounds"`
}

// NewPolygonObject returns an empty, fully opaque triangle object.
func NewPolygonObject() *PolygonObject {
	return &PolygonObject{Opacity: 1, PolygonType: Triangle}
}

func (p *PolygonObject) ObjectKind() Kind    { return KindPolygon }
func (p *PolygonObject) GeomBounds() *Bounds { return &p.Bounds }

// VertexCount returns the number of vertices in the coordinate pool.
func (p *PolygonObject) VertexCount() int {
	return len(p.Coords) / 3
}

// TriangleCount returns the number of triangles.
func (p *PolygonObject) TriangleCount() int {
	if p.Connections != nil {
		return len(p.Connections) / 3
	}
	return len(p.Coords) / 9
}

// IsEmpty returns true if the object has no geometry.
func (p *PolygonObject) IsEmpty() bool {
	return len(p.Coords) == 0
}

// Triangle returns the three vertex indices of triangle t, resolving
// connectivity when present.
func (p *PolygonObject) Triangle(t int) [3]int {
	if p.Connections != nil {
		c := p.Connections[t*3 : t*3+3]
		return [3]int{int(c[0]), int(c[1]), int(c[2])}
	}
	return [3]int{t * 3, t*3 + 1, t*3 + 2}
}

// Vertex returns the coordinates of vertex i.
func (p *PolygonObject) Vertex(i int) [3]float32 {
	return [3]float32{p.Coords[i*3], p.Coords[i*3+1], p.Coords[i*3+2]}
}
