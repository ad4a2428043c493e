package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// NormalPolicy selects how isosurface normals are bound.
type NormalPolicy int

const (
	// PerPolygon emits one unit normal per triangle.
	PerPolygon NormalPolicy = iota
	// PerVertex accumulates the unnormalized face normals of every
	// triangle sharing a vertex. It implies shared vertices.
	PerVertex
)

func (p NormalPolicy) String() string {
	switch p {
	case PerPolygon:
		return "polygon"
	case PerVertex:
		return "vertex"
	default:
		return "unknown"
	}
}

// ParseNormalPolicy accepts "polygon" or "vertex".
func ParseNormalPolicy(s string) (NormalPolicy, error) {
	switch strings.ToLower(s) {
	case "polygon", "per-polygon", "":
		return PerPolygon, nil
	case "vertex", "per-vertex":
		return PerVertex, nil
	}
	return 0, fmt.Errorf("mapper: unknown normal policy %q", s)
}

// MarchingCubes extracts an isosurface from a structured volume.
//
// With Duplicate set (the default) every triangle owns its three vertices.
// Otherwise each grid edge crossing the level yields exactly one vertex,
// shared by every triangle that uses it through Connections. PerVertex
// normals always use shared vertices.
type MarchingCubes struct {
	Base
	Isolevel  float64
	Normals   NormalPolicy
	Duplicate bool
}

var _ Mapper = (*MarchingCubes)(nil)

// NewMarchingCubes returns a duplicating, per-polygon-normal extractor.
func NewMarchingCubes(isolevel float64) *MarchingCubes {
	return &MarchingCubes{Isolevel: isolevel, Normals: PerPolygon, Duplicate: true}
}

// Exec implements Mapper.
func (m *MarchingCubes) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("marching cubes", obj)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*volume.StructuredVolume)
	if !ok {
		return nil, fmt.Errorf("mapper: marching cubes: %w: %s volume", ErrUnsupportedTopology, v.Topology())
	}
	return m.Extract(s)
}

// Extract runs marching cubes over every cell of s.
func (m *MarchingCubes) Extract(s *volume.StructuredVolume) (*geom.PolygonObject, error) {
	if err := scalarField("marching cubes", s); err != nil {
		return nil, err
	}
	m.AttachVolume(s)

	poly := geom.NewPolygonObject()
	if m.Duplicate && m.Normals == PerPolygon {
		m.extractDuplicated(s, poly)
	} else {
		m.extractShared(s, poly)
	}
	overallColor(m.TransferFunction(), s, m.Isolevel, poly)
	PropagateBounds(s, poly)

	slog.Debug("marching cubes",
		"isolevel", m.Isolevel,
		"triangles", poly.TriangleCount(),
		"vertices", poly.VertexCount(),
		"normals", m.Normals.String())
	return poly, nil
}

func (m *MarchingCubes) extractDuplicated(s *volume.StructuredVolume, poly *geom.PolygonObject) {
	var (
		values [8]float64
		pos    [8]r3.Vec
	)
	emit := func(tri *[3]crossing) {
		for _, c := range tri {
			poly.Coords = appendVec(poly.Coords, c.p)
		}
		poly.Normals = appendVec(poly.Normals, unit(faceNormal(tri[0].p, tri[1].p, tri[2].p)))
	}
	forEachCell(s, func(i, j, k int, nodes *[8]int) {
		for c, n := range nodes {
			values[c] = s.Scalar(n)
		}
		idx := caseIndex(values[:], m.Isolevel)
		if idx == 0 || idx == 255 {
			return
		}
		cellCorners(i, j, k, &pos)
		march(pos[:], values[:], m.Isolevel, cubeEdgeCorners[:], cubeTriangles[idx][:], emit)
	})
	poly.NormalType = geom.BindPerPolygon
}

// extractShared first computes one isopoint per crossing grid edge, owned
// by the edge's lower node, then walks the cells emitting connectivity.
func (m *MarchingCubes) extractShared(s *volume.StructuredVolume, poly *geom.PolygonObject) {
	res := s.Resolution()
	stride := [3]int{1, s.NodesPerLine(), s.NodesPerSlice()}
	isopoint := make([]int32, 3*s.NNodes())
	for i := range isopoint {
		isopoint[i] = -1
	}

	for k := 0; k < res[2]; k++ {
		for j := 0; j < res[1]; j++ {
			for i := 0; i < res[0]; i++ {
				node := s.Index(i, j, k)
				at := [3]int{i, j, k}
				v0 := s.Scalar(node)
				for axis := 0; axis < 3; axis++ {
					if at[axis]+1 >= res[axis] {
						continue
					}
					v1 := s.Scalar(node + stride[axis])
					if (v0 > m.Isolevel) == (v1 > m.Isolevel) {
						continue
					}
					p := [3]float64{float64(i), float64(j), float64(k)}
					p[axis] += edgeRatio(m.Isolevel, v0, v1)
					isopoint[3*node+axis] = int32(poly.VertexCount())
					poly.Coords = append(poly.Coords, float32(p[0]), float32(p[1]), float32(p[2]))
				}
			}
		}
	}

	perVertex := m.Normals == PerVertex
	if perVertex {
		poly.Normals = make([]float32, len(poly.Coords))
	}
	poly.Connections = make([]uint32, 0, len(poly.Coords))

	var values [8]float64
	forEachCell(s, func(i, j, k int, nodes *[8]int) {
		for c, n := range nodes {
			values[c] = s.Scalar(n)
		}
		idx := caseIndex(values[:], m.Isolevel)
		if idx == 0 || idx == 255 {
			return
		}
		row := &cubeTriangles[idx]
		for t := 0; row[t] != -1; t += 3 {
			var ids [3]uint32
			for e := 0; e < 3; e++ {
				own := cubeEdgeOwner[row[t+e]]
				node := s.Index(i+own.offset[0], j+own.offset[1], k+own.offset[2])
				ids[e] = uint32(isopoint[3*node+own.axis])
			}
			poly.Connections = append(poly.Connections, ids[0], ids[1], ids[2])

			n := faceNormal(vertexAt(poly, ids[0]), vertexAt(poly, ids[1]), vertexAt(poly, ids[2]))
			if !perVertex {
				poly.Normals = appendVec(poly.Normals, unit(n))
				continue
			}
			for _, id := range ids {
				poly.Normals[3*id] += float32(n.X)
				poly.Normals[3*id+1] += float32(n.Y)
				poly.Normals[3*id+2] += float32(n.Z)
			}
		}
	})

	if perVertex {
		poly.NormalType = geom.BindPerVertex
	} else {
		poly.NormalType = geom.BindPerPolygon
	}
}

func vertexAt(poly *geom.PolygonObject, id uint32) r3.Vec {
	return coordsAt(poly.Coords, int(id))
}
