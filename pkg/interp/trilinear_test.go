package interp

import (
	"testing"

	"github.com/chazu/voxmap/pkg/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// linearVolume holds f(i,j,k) = a*i + b*j + c*k + d.
func linearVolume[T volume.Number](t *testing.T, res [3]int, a, b, c, d float64) *volume.StructuredVolume {
	t.Helper()
	vals := make([]T, 0, res[0]*res[1]*res[2])
	for k := 0; k < res[2]; k++ {
		for j := 0; j < res[1]; j++ {
			for i := 0; i < res[0]; i++ {
				vals = append(vals, T(a*float64(i)+b*float64(j)+c*float64(k)+d))
			}
		}
	}
	v, err := volume.NewStructured(res, 1, volume.NewArray(vals))
	require.NoError(t, err)
	return v
}

func TestWeightsAtGridNode(t *testing.T) {
	v := linearVolume[int32](t, [3]int{4, 4, 4}, 1, 10, 100, 0)
	ip := New(v)
	ip.AttachPoint(r3.Vec{X: 2, Y: 1, Z: 3})

	w := ip.Weights()
	assert.Equal(t, 1.0, w[0])
	for i := 1; i < 8; i++ {
		assert.Equal(t, 0.0, w[i], "weight %d", i)
	}
	assert.Equal(t, v.Index(2, 1, 3), ip.Corners()[0])
	assert.Equal(t, 2.0+10+300, ip.Scalar(), "value at a node is the node's own value")
}

func TestWeightsSumToOne(t *testing.T) {
	v := linearVolume[uint8](t, [3]int{3, 3, 3}, 1, 1, 1, 0)
	ip := New(v)
	for _, p := range []r3.Vec{{X: 0.25, Y: 0.5, Z: 0.75}, {X: 1.9, Y: 0.1, Z: 1.3}, {X: 0.5, Y: 0.5, Z: 0.5}} {
		ip.AttachPoint(p)
		var sum float64
		for _, w := range ip.Weights() {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "point %v", p)
	}
}

func TestCornerOrder(t *testing.T) {
	v := linearVolume[int16](t, [3]int{3, 3, 3}, 1, 1, 1, 0)
	ip := New(v)
	ip.AttachPoint(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	want := [8]int{
		v.Index(0, 0, 0), v.Index(1, 0, 0), v.Index(1, 1, 0), v.Index(0, 1, 0),
		v.Index(0, 0, 1), v.Index(1, 0, 1), v.Index(1, 1, 1), v.Index(0, 1, 1),
	}
	assert.Equal(t, want, ip.Corners())
	for _, w := range ip.Weights() {
		assert.InDelta(t, 0.125, w, 1e-12)
	}
}

func TestScalarReproducesLinearField(t *testing.T) {
	v := linearVolume[int32](t, [3]int{5, 5, 5}, 2, 3, 4, 1)
	ip := New(v)
	p := r3.Vec{X: 1.25, Y: 2.5, Z: 3.75}
	assert.InDelta(t, 2*1.25+3*2.5+4*3.75+1, ip.Value(p), 1e-9)
}

func TestScalarFloatKinds(t *testing.T) {
	// Every element kind interpolates, not only integer fields.
	v := linearVolume[float32](t, [3]int{3, 3, 3}, 0.5, 0, 0, 0)
	ip := New(v)
	assert.InDelta(t, 0.375, ip.Value(r3.Vec{X: 0.75, Y: 1, Z: 1}), 1e-6)
}

func TestNegativeComponentsClamp(t *testing.T) {
	v := linearVolume[int32](t, [3]int{3, 3, 3}, 1, 10, 100, 0)
	ip := New(v)
	ip.AttachPoint(r3.Vec{X: -0.5, Y: -3, Z: 1})
	assert.Equal(t, v.Index(0, 0, 1), ip.Corners()[0])
	assert.Equal(t, 1.0, ip.Weights()[0])
	assert.Equal(t, 100.0, ip.Scalar())
}

func TestGradientLinearField(t *testing.T) {
	v := linearVolume[int32](t, [3]int{5, 5, 5}, 2, -3, 7, 50)
	ip := New(v)
	for _, p := range []r3.Vec{
		{X: 1.5, Y: 1.5, Z: 1.5},
		{X: 0.2, Y: 0.1, Z: 0.3}, // forward differences on the low faces
		{X: 3.5, Y: 3.2, Z: 3.9}, // backward differences on the high faces
	} {
		ip.AttachPoint(p)
		g := ip.Gradient()
		assert.InDelta(t, 2, g.X, 1e-9, "d/dx at %v", p)
		assert.InDelta(t, -3, g.Y, 1e-9, "d/dy at %v", p)
		assert.InDelta(t, 7, g.Z, 1e-9, "d/dz at %v", p)
	}
}

func TestGradientFlatAxis(t *testing.T) {
	v := linearVolume[int32](t, [3]int{4, 4, 1}, 1, 2, 0, 0)
	ip := New(v)
	ip.AttachPoint(r3.Vec{X: 1.5, Y: 1.5, Z: 0})
	g := ip.Gradient()
	assert.InDelta(t, 1, g.X, 1e-9)
	assert.InDelta(t, 2, g.Y, 1e-9)
	assert.Equal(t, 0.0, g.Z)
}

func TestOutOfRangeIndexRemapsToZero(t *testing.T) {
	// A point on the last node of the last axis owns a cell whose upper
	// corners fall past the end of the array; those corners read node 0.
	v := linearVolume[int32](t, [3]int{2, 2, 2}, 1, 1, 1, 5)
	ip := New(v)
	ip.AttachPoint(r3.Vec{X: 1, Y: 1, Z: 1})
	c := ip.Corners()
	assert.Equal(t, v.Index(1, 1, 1), c[0])
	for i := 1; i < 8; i++ {
		assert.Equal(t, 0, c[i], "corner %d", i)
	}
	assert.Equal(t, 8.0, ip.Scalar())
}
