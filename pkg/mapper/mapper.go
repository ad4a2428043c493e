// Package mapper turns scalar volumes into renderable geometry: isosurfaces
// by marching cubes or marching tetrahedra, planar slices, Metropolis
// point samples and raw node clouds.
//
// Every mapper shares a Base holding the transfer function used for
// coloring. Mappers are not safe for concurrent use, but distinct mappers
// may run in parallel over the same volume and transfer function as long
// as the volume's cached ranges were computed beforehand.
package mapper

import (
	"errors"
	"fmt"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/chazu/voxmap/pkg/volume"
)

var (
	// ErrTypeMismatch is returned when the input object is not a volume.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedField is returned for volumes with more than one
	// component per node where a scalar field is required.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrUnsupportedTopology is returned for volumes or cell types a
	// mapper cannot walk.
	ErrUnsupportedTopology = errors.New("unsupported topology")
	// ErrUnsupportedSampleType is returned by Metropolis sampling for
	// anything but an integer-valued structured volume.
	ErrUnsupportedSampleType = errors.New("unsupported sample type")
)

// Mapper extracts geometry from a volume.
type Mapper interface {
	Exec(obj geom.Object) (geom.Geometry, error)
}

// Base carries the state every mapper shares.
type Base struct {
	// Transfer colors the output. A nil Transfer is replaced by the
	// procedural function at transfer.DefaultResolution on first use.
	Transfer *transfer.Function
	vol      volume.Volume
}

// AttachVolume remembers the volume of the last run.
func (b *Base) AttachVolume(v volume.Volume) { b.vol = v }

// Volume returns the attached volume, or nil.
func (b *Base) Volume() volume.Volume { return b.vol }

// SetTransferFunction replaces the transfer function.
func (b *Base) SetTransferFunction(f *transfer.Function) { b.Transfer = f }

// TransferFunction returns the transfer function, creating the default
// one if none was set.
func (b *Base) TransferFunction() *transfer.Function {
	if b.Transfer == nil {
		b.Transfer = &transfer.Function{
			Colors:    transfer.NewColorMap(transfer.DefaultResolution),
			Opacities: transfer.NewOpacityMap(transfer.DefaultResolution),
		}
	}
	return b.Transfer
}

// PropagateBounds copies the volume's object-space and external bounds
// onto an output geometry, computing the object bounds first if needed.
func PropagateBounds(v volume.Volume, out geom.Geometry) {
	if !v.HasMinMaxObjectCoords() {
		v.UpdateMinMaxCoords()
	}
	b := out.GeomBounds()
	b.SetObject(v.MinObjectCoord(), v.MaxObjectCoord())
	b.SetExtern(v.MinExternCoord(), v.MaxExternCoord())
}

// asVolume narrows a generic object to a volume.
func asVolume(name string, obj geom.Object) (volume.Volume, error) {
	if obj == nil {
		return nil, fmt.Errorf("mapper: %s: %w: nil input", name, ErrTypeMismatch)
	}
	v, ok := obj.(volume.Volume)
	if !ok || obj.ObjectKind() != geom.KindVolume {
		return nil, fmt.Errorf("mapper: %s: %w: got %s object", name, ErrTypeMismatch, obj.ObjectKind())
	}
	return v, nil
}

// scalarField rejects multi-component volumes.
func scalarField(name string, v volume.Volume) error {
	if v.Veclen() != 1 {
		return fmt.Errorf("mapper: %s: %w: veclen %d", name, ErrUnsupportedField, v.Veclen())
	}
	return nil
}
