package mapper

import (
	"fmt"
	"log/slog"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// MarchingTetrahedra extracts an isosurface from an unstructured volume of
// tetrahedra. Triangles never share vertices and normals are per polygon.
type MarchingTetrahedra struct {
	Base
	Isolevel float64
}

var _ Mapper = (*MarchingTetrahedra)(nil)

// Exec implements Mapper.
func (m *MarchingTetrahedra) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("marching tetrahedra", obj)
	if err != nil {
		return nil, err
	}
	u, ok := v.(*volume.UnstructuredVolume)
	if !ok {
		return nil, fmt.Errorf("mapper: marching tetrahedra: %w: %s volume", ErrUnsupportedTopology, v.Topology())
	}
	return m.Extract(u)
}

// Extract runs marching tetrahedra over every cell of u.
func (m *MarchingTetrahedra) Extract(u *volume.UnstructuredVolume) (*geom.PolygonObject, error) {
	if err := scalarField("marching tetrahedra", u); err != nil {
		return nil, err
	}
	if u.CellType() != volume.CellTetrahedra {
		return nil, fmt.Errorf("mapper: marching tetrahedra: %w: %s cells", ErrUnsupportedTopology, u.CellType())
	}
	m.AttachVolume(u)

	poly := geom.NewPolygonObject()
	coords, conn := u.Coords(), u.Connections()
	var (
		values [4]float64
		pos    [4]r3.Vec
	)
	emit := func(tri *[3]crossing) {
		for _, c := range tri {
			poly.Coords = appendVec(poly.Coords, c.p)
		}
		poly.Normals = appendVec(poly.Normals, unit(faceNormal(tri[0].p, tri[1].p, tri[2].p)))
	}
	for c := 0; c < u.NCells(); c++ {
		cell := conn[4*c : 4*c+4]
		for i, n := range cell {
			values[i] = u.Scalar(int(n))
		}
		idx := caseIndex(values[:], m.Isolevel)
		if idx == 0 || idx == 15 {
			continue
		}
		for i, n := range cell {
			pos[i] = coordsAt(coords, int(n))
		}
		march(pos[:], values[:], m.Isolevel, tetEdgeCorners[:], tetTriangles[idx][:], emit)
	}
	poly.NormalType = geom.BindPerPolygon

	overallColor(m.TransferFunction(), u, m.Isolevel, poly)
	PropagateBounds(u, poly)

	slog.Debug("marching tetrahedra",
		"isolevel", m.Isolevel,
		"cells", u.NCells(),
		"triangles", poly.TriangleCount())
	return poly, nil
}
