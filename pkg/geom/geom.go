// Package geom defines the objects exchanged between the extraction engine
// and its consumers: scalar volumes on the way in, polygon and point
// geometry on the way out. All geometry streams are flat float32 arrays
// so they can be handed to a renderer without conversion.
package geom

import "cogentcore.org/core/math32"

// Kind identifies the concrete family of an Object.
type Kind int

const (
	KindVolume Kind = iota // scalar volume (structured or unstructured)
	KindPolygon            // triangulated surface
	KindPoint              // point cloud
	KindLine               // polyline set
)

func (k Kind) String() string {
	switch k {
	case KindVolume:
		return "volume"
	case KindPolygon:
		return "polygon"
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// Object is anything that can be handed to a mapper. Mappers inspect the
// kind to reject non-volume input.
type Object interface {
	ObjectKind() Kind
}

// Geometry is an Object produced by a mapper.
type Geometry interface {
	Object
	GeomBounds() *Bounds
}

// Bounds carries the object-space and external (physical) extent of the
// volume a geometry was extracted from, so a viewer can normalize sibling
// objects consistently.
type Bounds struct {
	Object math32.Box3 `json:"object"`
	Extern math32.Box3 `json:"extern"`
}

// SetObject sets the object-space extent.
func (b *Bounds) SetObject(min, max math32.Vector3) {
	b.Object.Min = min
	b.Object.Max = max
}

// SetExtern sets the external extent.
func (b *Bounds) SetExtern(min, max math32.Vector3) {
	b.Extern.Min = min
	b.Extern.Max = max
}
