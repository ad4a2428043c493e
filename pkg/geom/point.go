package geom

// PointObject is a point cloud. Coords, Colors and Normals each carry one
// triple per point. Normals are shading cues, not surface normals.
type PointObject struct {
	Coords  []float32 `json:"coords"`
	Colors  []float32 `json:"colors"`
	Normals []float32 `json:"normals"`
	Size    float32   `json:"size"`
	Bounds  Bounds    `json:"bounds"`
}

// DefaultPointSize is the point size used when none is configured.
const DefaultPointSize = 1

func (p *PointObject) ObjectKind() Kind    { return KindPoint }
func (p *PointObject) GeomBounds() *Bounds { return &p.Bounds }

// PointCount returns the number of points.
func (p *PointObject) PointCount() int {
	return len(p.Coords) / 3
}

// IsEmpty returns true if the object has no points.
func (p *PointObject) IsEmpty() bool {
	return len(p.Coords) == 0
}

// Append adds one point.
func (p *PointObject) Append(coord, color, normal [3]float32) {
	p.Coords = append(p.Coords, coord[0], coord[1], coord[2])
	p.Colors = append(p.Colors, color[0], color[1], color[2])
	p.Normals = append(p.Normals, normal[0], normal[1], normal[2])
}
