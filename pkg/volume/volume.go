// Package volume defines the scalar volumes consumed by the extraction
// engine: structured grids and unstructured cell meshes whose nodes carry
// one or more scalar components.
package volume

import (
	"errors"
	"math"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/math32/minmax"
	"github.com/chazu/voxmap/pkg/geom"
)

var (
	ErrShape       = errors.New("volume: shape mismatch")
	ErrUnknownKind = errors.New("volume: unknown element kind")
	ErrResolution  = errors.New("volume: invalid resolution")
)

// Topology distinguishes the two volume families.
type Topology int

const (
	Structured Topology = iota
	Unstructured
)

func (t Topology) String() string {
	switch t {
	case Structured:
		return "structured"
	case Unstructured:
		return "unstructured"
	default:
		return "unknown"
	}
}

// Volume is the read-only view of a scalar volume the mappers work on.
type Volume interface {
	geom.Object
	Topology() Topology
	Veclen() int
	Values() Array
	NNodes() int

	MinValue() float64
	MaxValue() float64
	HasMinMaxValues() bool
	UpdateMinMaxValues()

	MinObjectCoord() math32.Vector3
	MaxObjectCoord() math32.Vector3
	HasMinMaxObjectCoords() bool
	UpdateMinMaxCoords()

	MinExternCoord() math32.Vector3
	MaxExternCoord() math32.Vector3
}

// base holds the attributes shared by both topologies.
type base struct {
	veclen    int
	values    Array
	valRange  minmax.F64
	hasRange  bool
	object    math32.Box3
	hasObject bool
	extern    math32.Box3
	hasExtern bool
}

func (b *base) ObjectKind() geom.Kind { return geom.KindVolume }

// Veclen returns the number of components per node.
func (b *base) Veclen() int { return b.veclen }

// Values returns the node values, veclen components per node.
func (b *base) Values() Array { return b.values }

// NNodes returns the number of nodes.
func (b *base) NNodes() int {
	if b.veclen == 0 {
		return 0
	}
	return b.values.Len() / b.veclen
}

func (b *base) MinValue() float64 { return b.valRange.Min }
func (b *base) MaxValue() float64 { return b.valRange.Max }
func (b *base) HasMinMaxValues() bool { return b.hasRange }

// SetMinMaxValues caches a known value range, skipping the scan in
// UpdateMinMaxValues.
func (b *base) SetMinMaxValues(min, max float64) {
	b.valRange.Set(min, max)
	b.hasRange = true
}

// UpdateMinMaxValues scans the values for their extrema. Multi-component
// volumes use the per-node magnitude.
func (b *base) UpdateMinMaxValues() {
	b.valRange.SetInfinity()
	n := b.NNodes()
	for i := 0; i < n; i++ {
		v := b.nodeMagnitude(i)
		if v < b.valRange.Min {
			b.valRange.Min = v
		}
		if v > b.valRange.Max {
			b.valRange.Max = v
		}
	}
	if n == 0 {
		b.valRange.Set(0, 0)
	}
	b.hasRange = true
}

func (b *base) nodeMagnitude(i int) float64 {
	if b.veclen == 1 {
		return b.values.At(i)
	}
	var sum float64
	for c := 0; c < b.veclen; c++ {
		v := b.values.At(i*b.veclen + c)
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (b *base) MinObjectCoord() math32.Vector3 { return b.object.Min }
func (b *base) MaxObjectCoord() math32.Vector3 { return b.object.Max }
func (b *base) HasMinMaxObjectCoords() bool { return b.hasObject }

func (b *base) setObjectBounds(box math32.Box3) {
	b.object = box
	b.hasObject = true
}

// MinExternCoord returns the physical minimum corner, falling back to the
// object-space corner when no external bounds were set.
func (b *base) MinExternCoord() math32.Vector3 {
	if b.hasExtern {
		return b.extern.Min
	}
	return b.object.Min
}

// MaxExternCoord returns the physical maximum corner.
func (b *base) MaxExternCoord() math32.Vector3 {
	if b.hasExtern {
		return b.extern.Max
	}
	return b.object.Max
}

// SetExternBounds sets the physical extent of the volume.
func (b *base) SetExternBounds(min, max math32.Vector3) {
	b.extern.Min = min
	b.extern.Max = max
	b.hasExtern = true
}

// HasExternBounds reports whether physical bounds were set explicitly.
func (b *base) HasExternBounds() bool { return b.hasExtern }

// ValueRange returns the cached extrema, computing them first if needed.
func ValueRange(v Volume) (min, max float64) {
	if !v.HasMinMaxValues() {
		v.UpdateMinMaxValues()
	}
	return v.MinValue(), v.MaxValue()
}

func boxOfCoords(coords []float32) math32.Box3 {
	var box math32.Box3
	box.SetEmpty()
	for i := 0; i+2 < len(coords); i += 3 {
		box.ExpandByPoint(math32.Vec3(coords[i], coords[i+1], coords[i+2]))
	}
	return box
}
