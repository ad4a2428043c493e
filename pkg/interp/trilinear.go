// Package interp reconstructs scalar values and gradients inside the cells
// of a structured volume.
package interp

import (
	"math"

	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// cornerOffset is the index-space offset of each cell corner, in the
// order the weights are defined.
var cornerOffset = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// Trilinear interpolates inside the cell that owns the attached point.
// It caches the corner indices and weights of the last point, so one
// instance must not be shared between goroutines.
type Trilinear struct {
	values  volume.Array
	veclen  int
	nnodes  int
	res     [3]int
	line    int
	slice   int
	origin  [3]int
	corners [8]int
	weights [8]float64
}

// New attaches an interpolator to a structured volume.
func New(v *volume.StructuredVolume) *Trilinear {
	return &Trilinear{
		values: v.Values(),
		veclen: v.Veclen(),
		nnodes: v.NNodes(),
		res:    v.Resolution(),
		line:   v.NodesPerLine(),
		slice:  v.NodesPerSlice(),
	}
}

// AttachPoint selects the cell whose origin corner is the component-wise
// floor of p and computes the eight corner indices and weights. Negative
// components are clamped to 0.
func (t *Trilinear) AttachPoint(p r3.Vec) {
	pc := [3]float64{p.X, p.Y, p.Z}
	var frac [3]float64
	for a := 0; a < 3; a++ {
		if pc[a] < 0 {
			pc[a] = 0
		}
		f := math.Floor(pc[a])
		t.origin[a] = int(f)
		frac[a] = pc[a] - f
	}
	x, y, z := frac[0], frac[1], frac[2]
	xy, yz, zx, xyz := x*y, y*z, z*x, x*y*z

	t.weights = [8]float64{
		1 - x - y - z + xy + yz + zx - xyz,
		x - xy - zx + xyz,
		xy - xyz,
		y - xy - yz + xyz,
		z - zx - yz + xyz,
		zx - xyz,
		xyz,
		yz - xyz,
	}

	base := t.origin[0] + t.origin[1]*t.line + t.origin[2]*t.slice
	for c, off := range cornerOffset {
		t.corners[c] = t.checkValue(base + off[0] + off[1]*t.line + off[2]*t.slice)
	}
}

// checkValue remaps an out-of-range node index to node 0.
//
// TODO: clamp to the nearest valid neighbour instead; remapping to node 0
// distorts gradients on the upper faces of the volume.
func (t *Trilinear) checkValue(idx int) int {
	if idx < 0 || idx >= t.nnodes {
		return 0
	}
	return idx
}

// Corners returns the node indices of the attached cell.
func (t *Trilinear) Corners() [8]int { return t.corners }

// Weights returns the trilinear weights of the attached point.
func (t *Trilinear) Weights() [8]float64 { return t.weights }

func (t *Trilinear) scalarAt(node int) float64 {
	return t.values.At(node * t.veclen)
}

// Scalar returns the weighted sum of the eight corner values. Every
// element kind is widened to float64 first.
func (t *Trilinear) Scalar() float64 {
	var sum float64
	for c, w := range t.weights {
		if w == 0 {
			continue
		}
		sum += w * t.scalarAt(t.corners[c])
	}
	return sum
}

// Gradient estimates the field gradient at the attached point: finite
// differences are taken at each corner (forward on the low boundary,
// backward on the high boundary, central inside) and blended with the
// trilinear weights.
func (t *Trilinear) Gradient() r3.Vec {
	var g r3.Vec
	for c, off := range cornerOffset {
		w := t.weights[c]
		if w == 0 {
			continue
		}
		node := [3]int{t.origin[0] + off[0], t.origin[1] + off[1], t.origin[2] + off[2]}
		d := r3.Vec{
			X: t.difference(node, 0),
			Y: t.difference(node, 1),
			Z: t.difference(node, 2),
		}
		g = r3.Add(g, r3.Scale(w, d))
	}
	return g
}

// difference takes the finite difference along one axis at a grid node.
func (t *Trilinear) difference(node [3]int, axis int) float64 {
	n := t.res[axis]
	if n < 2 {
		return 0
	}
	stride := [3]int{1, t.line, t.slice}[axis]
	idx := node[0] + node[1]*t.line + node[2]*t.slice
	switch {
	case node[axis] <= 0:
		return t.scalarAt(t.checkValue(idx+stride)) - t.scalarAt(t.checkValue(idx))
	case node[axis] >= n-1:
		return t.scalarAt(t.checkValue(idx)) - t.scalarAt(t.checkValue(idx-stride))
	default:
		return (t.scalarAt(t.checkValue(idx+stride)) - t.scalarAt(t.checkValue(idx-stride))) / 2
	}
}

// Value is a shorthand for AttachPoint followed by Scalar.
func (t *Trilinear) Value(p r3.Vec) float64 {
	t.AttachPoint(p)
	return t.Scalar()
}
