// Package solid builds constructive solid geometry on top of sdfx signed
// distance functions. A Solid is immutable: every operation returns a new
// one, so a script can reuse a subexpression in several places.
package solid

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDimension is returned for non-positive primitive dimensions.
var ErrDimension = errors.New("solid: dimensions must be positive")

// Solid is an opaque CSG node.
type Solid struct {
	s    sdf.SDF3
	desc string
}

// SDF returns the underlying distance function.
func (s *Solid) SDF() sdf.SDF3 { return s.s }

// String describes how the solid was built, e.g. "(difference (box) (sphere))".
func (s *Solid) String() string { return s.desc }

// BoundingBox returns the axis-aligned bounding box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Evaluate returns the signed distance at p: negative inside.
func (s *Solid) Evaluate(p [3]float64) float64 {
	return s.s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]})
}

func wrap(s sdf.SDF3, err error, desc string) (*Solid, error) {
	if err != nil {
		return nil, fmt.Errorf("solid: %s: %w", desc, err)
	}
	return &Solid{s: s, desc: desc}, nil
}

func positive(vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) {
			return fmt.Errorf("%w, got %g", ErrDimension, v)
		}
	}
	return nil
}

// Box is centered on the origin.
func Box(x, y, z float64) (*Solid, error) {
	if err := positive(x, y, z); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	return wrap(s, err, "(box)")
}

// Sphere is centered on the origin.
func Sphere(radius float64) (*Solid, error) {
	if err := positive(radius); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(radius)
	return wrap(s, err, "(sphere)")
}

// Cylinder is centered on the origin with its axis along z.
func Cylinder(height, radius float64) (*Solid, error) {
	if err := positive(height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	return wrap(s, err, "(cylinder)")
}

// Named builds one of the single-size primitives a volume can name:
// "sphere" (diameter size), "box" or "cube" (edge size) and "cylinder"
// (height and diameter size).
func Named(name string, size float64) (*Solid, error) {
	if err := positive(size); err != nil {
		return nil, fmt.Errorf("solid: shape size: %w", err)
	}
	switch name {
	case "sphere":
		return Sphere(size / 2)
	case "box", "cube":
		return Box(size, size, size)
	case "cylinder":
		return Cylinder(size, size/2)
	}
	return nil, fmt.Errorf("solid: unknown shape %q", name)
}

// Union merges one or more solids.
func Union(solids ...*Solid) (*Solid, error) {
	if len(solids) == 0 {
		return nil, errors.New("solid: union of nothing")
	}
	if len(solids) == 1 {
		return solids[0], nil
	}
	parts := make([]sdf.SDF3, len(solids))
	desc := "(union"
	for i, s := range solids {
		parts[i] = s.s
		desc += " " + s.desc
	}
	return &Solid{s: sdf.Union3D(parts...), desc: desc + ")"}, nil
}

// Difference removes b from a. The result keeps a's bounding box.
func Difference(a, b *Solid) *Solid {
	return &Solid{s: sdf.Difference3D(a.s, b.s), desc: "(difference " + a.desc + " " + b.desc + ")"}
}

// Intersection keeps the space inside both solids.
func Intersection(a, b *Solid) *Solid {
	return &Solid{s: sdf.Intersect3D(a.s, b.s), desc: "(intersection " + a.desc + " " + b.desc + ")"}
}

// Translate moves the solid by d.
func (s *Solid) Translate(d [3]float64) *Solid {
	m := sdf.Translate3d(v3.Vec{X: d[0], Y: d[1], Z: d[2]})
	return &Solid{s: sdf.Transform3D(s.s, m), desc: s.desc}
}

// Rotate applies Euler angles in degrees, x first, then y, then z.
func (s *Solid) Rotate(deg [3]float64) *Solid {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	m := sdf.RotateZ(rad(deg[2])).Mul(sdf.RotateY(rad(deg[1]))).Mul(sdf.RotateX(rad(deg[0])))
	return &Solid{s: sdf.Transform3D(s.s, m), desc: s.desc}
}
