package volume

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FromSDF3 samples a signed distance function on a uniform grid spanning
// its bounding box. Node values are the signed distances, so the zero
// isosurface reproduces the solid's surface.
func FromSDF3(s sdf.SDF3, res [3]int) (*StructuredVolume, error) {
	for i, n := range res {
		if n < 2 {
			return nil, fmt.Errorf("%w: axis %d needs at least 2 nodes to span an SDF, got %d", ErrResolution, i, n)
		}
	}
	bb := s.BoundingBox()
	step := v3.Vec{
		X: (bb.Max.X - bb.Min.X) / float64(res[0]-1),
		Y: (bb.Max.Y - bb.Min.Y) / float64(res[1]-1),
		Z: (bb.Max.Z - bb.Min.Z) / float64(res[2]-1),
	}
	values := make([]float32, 0, res[0]*res[1]*res[2])
	for k := 0; k < res[2]; k++ {
		for j := 0; j < res[1]; j++ {
			for i := 0; i < res[0]; i++ {
				p := v3.Vec{
					X: bb.Min.X + float64(i)*step.X,
					Y: bb.Min.Y + float64(j)*step.Y,
					Z: bb.Min.Z + float64(k)*step.Z,
				}
				values = append(values, float32(s.Evaluate(p)))
			}
		}
	}
	vol, err := NewStructured(res, 1, NewArray(values))
	if err != nil {
		return nil, err
	}
	vol.SetExternBounds(
		math32.Vec3(float32(bb.Min.X), float32(bb.Min.Y), float32(bb.Min.Z)),
		math32.Vec3(float32(bb.Max.X), float32(bb.Max.Y), float32(bb.Max.Z)),
	)
	return vol, nil
}

// Quantize rescales a single-component volume into an integer kind,
// mapping the value range onto the kind's full range. Metropolis sampling
// needs integer fields, and SDF volumes are float32.
func Quantize(s *StructuredVolume, kind Kind) (*StructuredVolume, error) {
	if !kind.IsInteger() {
		return nil, fmt.Errorf("volume: quantize target %v is not an integer kind", kind)
	}
	if s.Veclen() != 1 {
		return nil, fmt.Errorf("%w: quantize needs veclen 1, got %d", ErrShape, s.Veclen())
	}
	min, max := ValueRange(s)
	lo, hi := kind.Range()
	span := max - min
	out := make([]float64, s.NNodes())
	for i := range out {
		t := 0.0
		if span > 0 {
			t = (s.values.At(i) - min) / span
		}
		out[i] = lo + t*(hi-lo)
	}
	values, err := FromFloat64(kind, out)
	if err != nil {
		return nil, err
	}
	q, err := NewStructured(s.res, 1, values)
	if err != nil {
		return nil, err
	}
	if s.grid != GridUniform {
		if err := q.SetCoords(s.grid, s.coords); err != nil {
			return nil, err
		}
	}
	if s.hasExtern {
		q.SetExternBounds(s.extern.Min, s.extern.Max)
	}
	return q, nil
}
