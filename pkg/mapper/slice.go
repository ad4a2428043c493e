package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is the set of points where A*x + B*y + C*z + D = 0.
type Plane struct {
	A, B, C, D float64
}

// Eval returns the signed plane equation at p.
func (pl Plane) Eval(p r3.Vec) float64 {
	return pl.A*p.X + pl.B*p.Y + pl.C*p.Z + pl.D
}

// Normal returns the unit plane normal.
func (pl Plane) Normal() r3.Vec {
	return unit(r3.Vec{X: pl.A, Y: pl.B, Z: pl.C})
}

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("mapper: unknown axis %q", s)
}

// OrthoPlane returns the plane perpendicular to axis through coordinate at.
func OrthoPlane(axis Axis, at float64) Plane {
	switch axis {
	case AxisY:
		return Plane{B: 1, D: -at}
	case AxisZ:
		return Plane{C: 1, D: -at}
	default:
		return Plane{A: 1, D: -at}
	}
}

// SlicePlane cuts a volume with a plane. Corners are classified by the
// sign of the plane equation instead of by value, so the same case tables
// drive the cut. Colors are per vertex from the interpolated scalar;
// every triangle carries the plane normal.
//
// Structured volumes are sliced in index space. Unstructured volumes of
// tetrahedra or hexahedra are sliced in their node coordinates.
type SlicePlane struct {
	Base
	Plane Plane
}

var _ Mapper = (*SlicePlane)(nil)

// NewSlicePlane returns a mapper cutting along p.
func NewSlicePlane(p Plane) *SlicePlane {
	return &SlicePlane{Plane: p}
}

// NewOrthoSlice returns a mapper cutting perpendicular to axis at the
// given coordinate.
func NewOrthoSlice(axis Axis, at float64) *SlicePlane {
	return NewSlicePlane(OrthoPlane(axis, at))
}

// Exec implements Mapper.
func (m *SlicePlane) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("slice", obj)
	if err != nil {
		return nil, err
	}
	return m.Slice(v)
}

// Slice cuts v and returns the section.
func (m *SlicePlane) Slice(v volume.Volume) (*geom.PolygonObject, error) {
	if err := scalarField("slice", v); err != nil {
		return nil, err
	}
	lo, hi := volume.ValueRange(v)
	sl := &slicer{
		plane: m.Plane,
		tf:    m.TransferFunction(),
		min:   lo,
		max:   hi,
		poly:  geom.NewPolygonObject(),
	}
	n := m.Plane.Normal()
	sl.normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}

	switch vol := v.(type) {
	case *volume.StructuredVolume:
		sl.structured(vol)
	case *volume.UnstructuredVolume:
		switch vol.CellType() {
		case volume.CellTetrahedra:
			sl.tetrahedra(vol)
		case volume.CellHexahedra:
			sl.hexahedra(vol)
		default:
			return nil, fmt.Errorf("mapper: slice: %w: %s cells", ErrUnsupportedTopology, vol.CellType())
		}
	default:
		return nil, fmt.Errorf("mapper: slice: %w: %T", ErrUnsupportedTopology, v)
	}
	m.AttachVolume(v)

	poly := sl.poly
	poly.ColorType = geom.BindPerVertex
	poly.NormalType = geom.BindPerPolygon
	PropagateBounds(v, poly)

	slog.Debug("slice", "plane", m.Plane, "triangles", poly.TriangleCount())
	return poly, nil
}

type slicer struct {
	plane    Plane
	normal   [3]float32
	tf       *transfer.Function
	min, max float64
	poly     *geom.PolygonObject

	// per-cell scratch
	dist  [8]float64
	value [8]float64
	pos   [8]r3.Vec
}

// cell cuts the first n corners of the scratch cell with the given table.
func (sl *slicer) cell(n int, edges [][2]int, table func(idx int) []int8) {
	for c := 0; c < n; c++ {
		sl.dist[c] = sl.plane.Eval(sl.pos[c])
	}
	idx := caseIndex(sl.dist[:n], 0)
	if idx == 0 || idx == 1<<n-1 {
		return
	}
	march(sl.pos[:n], sl.dist[:n], 0, edges, table(idx), sl.emit)
}

func (sl *slicer) emit(tri *[3]crossing) {
	for _, c := range tri {
		sl.poly.Coords = appendVec(sl.poly.Coords, c.p)
		s := sl.value[c.a] + c.t*(sl.value[c.b]-sl.value[c.a])
		rgb := sl.tf.Color(s, sl.min, sl.max)
		sl.poly.Colors = append(sl.poly.Colors, rgb[0], rgb[1], rgb[2])
	}
	sl.poly.Normals = append(sl.poly.Normals, sl.normal[0], sl.normal[1], sl.normal[2])
}

func cubeRow(idx int) []int8 { return cubeTriangles[idx][:] }
func tetRow(idx int) []int8  { return tetTriangles[idx][:] }

func (sl *slicer) structured(s *volume.StructuredVolume) {
	forEachCell(s, func(i, j, k int, nodes *[8]int) {
		cellCorners(i, j, k, &sl.pos)
		for c, n := range nodes {
			sl.value[c] = s.Scalar(n)
		}
		sl.cell(8, cubeEdgeCorners[:], cubeRow)
	})
}

func (sl *slicer) tetrahedra(u *volume.UnstructuredVolume) {
	sl.unstructured(u, 4, tetEdgeCorners[:], tetRow)
}

// hexahedra relies on hexahedral connectivity listing corners in the same
// order as the cube table.
func (sl *slicer) hexahedra(u *volume.UnstructuredVolume) {
	sl.unstructured(u, 8, cubeEdgeCorners[:], cubeRow)
}

func (sl *slicer) unstructured(u *volume.UnstructuredVolume, npc int, edges [][2]int, table func(int) []int8) {
	coords, conn := u.Coords(), u.Connections()
	for c := 0; c < u.NCells(); c++ {
		for i, n := range conn[npc*c : npc*c+npc] {
			sl.pos[i] = coordsAt(coords, int(n))
			sl.value[i] = u.Scalar(int(n))
		}
		sl.cell(npc, edges, table)
	}
}
