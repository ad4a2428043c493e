package mapper

import (
	"fmt"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/chazu/voxmap/pkg/volume"
)

// IsoOptions configures isosurface extraction.
type IsoOptions struct {
	Isolevel  float64
	Normals   NormalPolicy
	Duplicate bool
}

// Isosurface picks marching cubes for structured volumes and marching
// tetrahedra for unstructured ones. Normals and Duplicate only affect
// marching cubes.
func Isosurface(v volume.Volume, opts IsoOptions, tf *transfer.Function) (*geom.PolygonObject, error) {
	switch v.Topology() {
	case volume.Structured:
		if s, ok := v.(*volume.StructuredVolume); ok {
			mc := &MarchingCubes{
				Base:      Base{Transfer: tf},
				Isolevel:  opts.Isolevel,
				Normals:   opts.Normals,
				Duplicate: opts.Duplicate,
			}
			return mc.Extract(s)
		}
	case volume.Unstructured:
		if u, ok := v.(*volume.UnstructuredVolume); ok {
			mt := &MarchingTetrahedra{Base: Base{Transfer: tf}, Isolevel: opts.Isolevel}
			return mt.Extract(u)
		}
	}
	return nil, fmt.Errorf("mapper: isosurface: %w: %s volume of type %T", ErrUnsupportedTopology, v.Topology(), v)
}

// IsosurfaceMapper runs Isosurface as a Mapper.
type IsosurfaceMapper struct {
	Base
	IsoOptions
}

var _ Mapper = (*IsosurfaceMapper)(nil)

// Exec implements Mapper.
func (m *IsosurfaceMapper) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("isosurface", obj)
	if err != nil {
		return nil, err
	}
	m.AttachVolume(v)
	return Isosurface(v, m.IsoOptions, m.TransferFunction())
}

// overallColor binds a single color, looked up at the isolevel's position
// within the volume's value range.
func overallColor(tf *transfer.Function, v volume.Volume, level float64, poly *geom.PolygonObject) {
	lo, hi := volume.ValueRange(v)
	rgb := tf.Color(level, lo, hi)
	poly.Colors = []float32{rgb[0], rgb[1], rgb[2]}
	poly.ColorType = geom.BindOverall
}
