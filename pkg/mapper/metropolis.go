package mapper

import (
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/randx"
	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/interp"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultParticles is the sample count used when none is configured.
const DefaultParticles = 10000

// MetropolisSampling draws a point cloud whose density follows the
// transfer function's opacity. Each iteration proposes a uniformly random
// position; the chain moves there with probability min(1, rho'/rho),
// where rho is the opacity of the interpolated value. Every iteration
// emits the current state, so Particles iterations yield exactly
// Particles points, with repeats where proposals were rejected.
//
// Only structured volumes of an integer element kind are accepted.
type MetropolisSampling struct {
	Base
	Particles int
	Seed      int64
	PointSize float32
}

var _ Mapper = (*MetropolisSampling)(nil)

// NewMetropolisSampling returns a sampler drawing n particles.
func NewMetropolisSampling(n int, seed int64) *MetropolisSampling {
	return &MetropolisSampling{Particles: n, Seed: seed, PointSize: geom.DefaultPointSize}
}

// Exec implements Mapper.
func (m *MetropolisSampling) Exec(obj geom.Object) (geom.Geometry, error) {
	v, err := asVolume("metropolis", obj)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*volume.StructuredVolume)
	if !ok {
		return nil, fmt.Errorf("mapper: metropolis: %w: %s volume", ErrUnsupportedSampleType, v.Topology())
	}
	return m.Sample(s)
}

// particle is one state of the chain.
type particle struct {
	coord, color, normal [3]float32
	rho                  float64
}

// Sample runs the chain over s.
func (m *MetropolisSampling) Sample(s *volume.StructuredVolume) (*geom.PointObject, error) {
	if err := scalarField("metropolis", s); err != nil {
		return nil, err
	}
	if kind := s.Values().Kind(); !kind.IsInteger() {
		return nil, fmt.Errorf("mapper: metropolis: %w: %s samples", ErrUnsupportedSampleType, kind)
	}
	m.AttachVolume(s)

	out := &geom.PointObject{Size: m.PointSize}
	if out.Size == 0 {
		out.Size = geom.DefaultPointSize
	}
	PropagateBounds(s, out)
	if m.Particles <= 0 {
		return out, nil
	}

	res := s.Resolution()
	rng := randx.NewSysRand(m.Seed)
	tf := m.TransferFunction()
	lo, hi := volume.ValueRange(s)
	ip := interp.New(s)

	propose := func() particle {
		p := r3.Vec{
			X: rng.Float64() * float64(res[0]-1),
			Y: rng.Float64() * float64(res[1]-1),
			Z: rng.Float64() * float64(res[2]-1),
		}
		return evaluate(ip, tf, p, lo, hi)
	}

	out.Coords = make([]float32, 0, 3*m.Particles)
	out.Colors = make([]float32, 0, 3*m.Particles)
	out.Normals = make([]float32, 0, 3*m.Particles)

	cur := propose()
	accepted := 0
	for n := 0; n < m.Particles; n++ {
		trial := propose()
		if acceptance(cur.rho, trial.rho) >= rng.Float64() {
			cur = trial
			accepted++
		}
		out.Append(cur.coord, cur.color, cur.normal)
	}

	slog.Debug("metropolis sampling",
		"particles", out.PointCount(),
		"accepted", accepted,
		"seed", m.Seed)
	return out, nil
}

// acceptance is min(1, next/cur), with a move out of a zero-density state
// always accepted and a move between zero-density states never.
func acceptance(cur, next float64) float64 {
	if cur == 0 {
		if next > 0 {
			return 1
		}
		return 0
	}
	r := next / cur
	if r > 1 {
		return 1
	}
	return r
}

func evaluate(ip *interp.Trilinear, tf *transfer.Function, p r3.Vec, lo, hi float64) particle {
	ip.AttachPoint(p)
	value := ip.Scalar()
	g := ip.Gradient()
	idx := tf.Index(value, lo, hi)
	rgb := tf.Colors.At(idx)
	return particle{
		coord:  [3]float32{float32(p.X), float32(p.Y), float32(p.Z)},
		color:  [3]float32{rgb[0], rgb[1], rgb[2]},
		normal: [3]float32{float32(g.X), float32(g.Y), float32(g.Z)},
		rho:    float64(tf.Opacities.At(idx)),
	}
}
