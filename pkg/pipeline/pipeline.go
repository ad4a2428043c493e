// Package pipeline runs a plan: it builds one volume and one transfer
// function, then applies each mapping step to the volume in order. One
// geometry is produced per step.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/chazu/voxmap/pkg/mapper"
	"github.com/chazu/voxmap/pkg/solid"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/chazu/voxmap/pkg/volume"
)

// DefaultResolution is the grid used for shape sources that name none.
var DefaultResolution = [3]int{32, 32, 32}

// ErrNoSource is returned when a plan names no shape, solid, raw file or
// prebuilt volume.
var ErrNoSource = errors.New("pipeline: no volume source")

// Source describes where the volume comes from. Exactly one of Volume,
// RawPath, Solid and Shape is used, in that order of preference.
type Source struct {
	Shape    string
	Solid    *solid.Solid
	Size     float64
	Res      [3]int
	RawPath  string
	Kind     string // sample type of a raw file
	Quantize string // integer kind to rescale a shape volume into
	Cells    string // "tetrahedra" or "hexahedra" converts to unstructured
	Volume   volume.Volume
}

// TransferSpec selects the transfer function. File wins over Resolution.
type TransferSpec struct {
	Resolution int
	File       string
}

// StepKind enumerates the mapping steps.
type StepKind int

const (
	StepIsosurface StepKind = iota
	StepSlice
	StepMetropolis
	StepVertices
)

func (k StepKind) String() string {
	switch k {
	case StepIsosurface:
		return "isosurface"
	case StepSlice:
		return "slice"
	case StepMetropolis:
		return "metropolis"
	case StepVertices:
		return "vertices"
	default:
		return "unknown"
	}
}

// Step is one mapping applied to the plan's volume. Only the fields of
// the step's kind are read.
type Step struct {
	Kind      StepKind
	Name      string
	Iso       mapper.IsoOptions
	Plane     mapper.Plane
	Particles int
	Seed      int64
	PointSize float32
}

// Plan is the immutable result of evaluating a script. Each evaluation
// produces a new plan.
type Plan struct {
	Source   Source
	Transfer TransferSpec
	Steps    []Step
}

// Options carries run-wide defaults.
type Options struct {
	TransferResolution int
	Seed               int64
}

// Result is the geometry produced by one step.
type Result struct {
	Name     string
	Step     Step
	Geometry geom.Geometry
}

// Polygons returns the result as a polygon object, or nil.
func (r Result) Polygons() *geom.PolygonObject {
	p, _ := r.Geometry.(*geom.PolygonObject)
	return p
}

// Points returns the result as a point object, or nil.
func (r Result) Points() *geom.PointObject {
	p, _ := r.Geometry.(*geom.PointObject)
	return p
}

// BuildVolume materializes the source.
func BuildVolume(src Source) (volume.Volume, error) {
	if src.Volume != nil {
		return src.Volume, nil
	}
	var (
		s   *volume.StructuredVolume
		err error
	)
	switch {
	case src.RawPath != "":
		s, err = rawVolume(src)
	case src.Solid != nil, src.Shape != "":
		s, err = shapeVolume(src)
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, err
	}
	if src.Cells == "" {
		return s, nil
	}
	cell, err := volume.ParseCellType(src.Cells)
	if err != nil {
		return nil, err
	}
	if cell == volume.CellHexahedra {
		return volume.Hexahedralize(s)
	}
	return volume.Tetrahedralize(s)
}

func rawVolume(src Source) (*volume.StructuredVolume, error) {
	kind, err := volume.ParseKind(src.Kind)
	if err != nil {
		return nil, err
	}
	return volume.LoadRaw(src.RawPath, kind, src.Res)
}

func shapeVolume(src Source) (*volume.StructuredVolume, error) {
	sol := src.Solid
	if sol == nil {
		var err error
		if sol, err = solid.Named(src.Shape, src.Size); err != nil {
			return nil, err
		}
	}
	res := src.Res
	if res == ([3]int{}) {
		res = DefaultResolution
	}
	s, err := volume.FromSDF3(sol.SDF(), res)
	if err != nil {
		return nil, err
	}
	if src.Quantize == "" {
		return s, nil
	}
	kind, err := volume.ParseKind(src.Quantize)
	if err != nil {
		return nil, err
	}
	return volume.Quantize(s, kind)
}

// BuildTransfer loads the transfer file, or builds the procedural
// function at the requested resolution, falling back to opts and then
// to transfer.DefaultResolution.
func BuildTransfer(spec TransferSpec, opts Options) (*transfer.Function, error) {
	if spec.File != "" {
		return transfer.Load(transfer.FileReader{}, spec.File)
	}
	res := spec.Resolution
	if res == 0 {
		res = opts.TransferResolution
	}
	if res == 0 {
		res = transfer.DefaultResolution
	}
	return transfer.New(res)
}

// Mapper returns the mapper that runs the step with tf.
func (s Step) Mapper(tf *transfer.Function, opts Options) (mapper.Mapper, error) {
	base := mapper.Base{Transfer: tf}
	switch s.Kind {
	case StepIsosurface:
		return &mapper.IsosurfaceMapper{Base: base, IsoOptions: s.Iso}, nil
	case StepSlice:
		return &mapper.SlicePlane{Base: base, Plane: s.Plane}, nil
	case StepMetropolis:
		m := mapper.NewMetropolisSampling(s.Particles, s.Seed)
		m.Base = base
		if m.Seed == 0 {
			m.Seed = opts.Seed
		}
		if s.PointSize > 0 {
			m.PointSize = s.PointSize
		}
		return m, nil
	case StepVertices:
		return &mapper.ExtractVertices{Base: base, PointSize: s.PointSize}, nil
	default:
		return nil, fmt.Errorf("unknown step kind: %v", s.Kind)
	}
}

// Run builds the plan's volume and transfer function and executes every
// step. It stops at the first failing step, or when ctx is done between
// steps. The plan is never mutated.
func Run(ctx context.Context, p *Plan, opts Options) ([]Result, error) {
	if p == nil {
		return nil, nil
	}
	vol, err := BuildVolume(p.Source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build volume: %w", err)
	}
	tf, err := BuildTransfer(p.Transfer, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build transfer function: %w", err)
	}
	slog.Debug("pipeline: volume ready",
		"topology", vol.Topology(),
		"nodes", vol.NNodes(),
		"transfer", tf.Resolution(),
		"steps", len(p.Steps))

	results := make([]Result, 0, len(p.Steps))
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: step %d (%s): %w", i, step.Kind, err)
		}
		m, err := step.Mapper(tf, opts)
		if err != nil {
			return nil, fmt.Errorf("pipeline: step %d: %w", i, err)
		}
		g, err := m.Exec(vol)
		if err != nil {
			return nil, fmt.Errorf("pipeline: step %d (%s): %w", i, step.Kind, err)
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", step.Kind, i)
		}
		results = append(results, Result{Name: name, Step: step, Geometry: g})
	}
	return results, nil
}
