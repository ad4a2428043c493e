package mapper

import (
	"log/slog"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/floats"
)

// ExtractVertices emits one point per volume node, colored by the node's
// value, or by its magnitude for multi-component volumes. Uniform grids
// are placed inside their external bounds; every other layout uses the
// volume's own node coordinates.
type ExtractVertices struct {
	Base
	PointSize float32
}

var _ Mapper = (*ExtractVertices)(nil)

// Exec implements Mapper.
func (m *ExtractVertices) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("vertices", obj)
	if err != nil {
		return nil, err
	}
	return m.Extract(v), nil
}

// Extract builds the point cloud.
func (m *ExtractVertices) Extract(v volume.Volume) *geom.PointObject {
	m.AttachVolume(v)
	out := &geom.PointObject{Size: m.PointSize}
	if out.Size == 0 {
		out.Size = geom.DefaultPointSize
	}

	var coords []float32
	switch vol := v.(type) {
	case *volume.StructuredVolume:
		coords = vol.NodeCoords()
	case *volume.UnstructuredVolume:
		coords = vol.Coords()
	}
	out.Coords = append([]float32(nil), coords...)

	tf := m.TransferFunction()
	lo, hi := volume.ValueRange(v)
	values, veclen := v.Values(), v.Veclen()
	comp := make([]float64, veclen)
	n := v.NNodes()
	out.Colors = make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		var s float64
		if veclen == 1 {
			s = values.At(i)
		} else {
			for c := range comp {
				comp[c] = values.At(i*veclen + c)
			}
			s = floats.Norm(comp, 2)
		}
		rgb := tf.Color(s, lo, hi)
		out.Colors = append(out.Colors, rgb[0], rgb[1], rgb[2])
	}
	PropagateBounds(v, out)

	slog.Debug("extract vertices", "points", out.PointCount(), "veclen", veclen)
	return out
}
