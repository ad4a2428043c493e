package volume

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// GridType says how a structured volume places its nodes in space.
type GridType int

const (
	GridUniform     GridType = iota // evenly spaced inside the external bounds
	GridRectilinear                 // one coordinate list per axis
	GridIrregular                   // one xyz triple per node
)

func (g GridType) String() string {
	switch g {
	case GridUniform:
		return "uniform"
	case GridRectilinear:
		return "rectilinear"
	case GridIrregular:
		return "irregular"
	default:
		return "unknown"
	}
}

// StructuredVolume is a logically rectangular grid of Nx*Ny*Nz nodes
// stored x-fastest, then y, then z. Object-space coordinates are grid
// indices, so the object bounds are [0, N-1] on every axis.
type StructuredVolume struct {
	base
	res    [3]int
	grid   GridType
	coords []float32
}

var _ Volume = (*StructuredVolume)(nil)

// NewStructured creates a uniform structured volume.
func NewStructured(res [3]int, veclen int, values Array) (*StructuredVolume, error) {
	for i, n := range res {
		if n < 1 {
			return nil, fmt.Errorf("%w: axis %d has %d nodes", ErrResolution, i, n)
		}
	}
	if veclen < 1 {
		return nil, fmt.Errorf("%w: veclen %d", ErrShape, veclen)
	}
	nnodes := res[0] * res[1] * res[2]
	if values == nil || values.Len() != nnodes*veclen {
		got := 0
		if values != nil {
			got = values.Len()
		}
		return nil, fmt.Errorf("%w: %d values for %d nodes x %d components", ErrShape, got, nnodes, veclen)
	}
	return &StructuredVolume{
		base: base{veclen: veclen, values: values},
		res:  res,
		grid: GridUniform,
	}, nil
}

// SetCoords attaches explicit node coordinates. Rectilinear grids take
// Nx+Ny+Nz values (x list, then y, then z); irregular grids take one xyz
// triple per node. The external bounds are set from the coordinates.
func (s *StructuredVolume) SetCoords(grid GridType, coords []float32) error {
	switch grid {
	case GridUniform:
		s.grid, s.coords = GridUniform, nil
		return nil
	case GridRectilinear:
		if want := s.res[0] + s.res[1] + s.res[2]; len(coords) != want {
			return fmt.Errorf("%w: rectilinear grid needs %d coordinates, got %d", ErrShape, want, len(coords))
		}
	case GridIrregular:
		if want := 3 * s.nnodes(); len(coords) != want {
			return fmt.Errorf("%w: irregular grid needs %d coordinates, got %d", ErrShape, want, len(coords))
		}
	default:
		return fmt.Errorf("%w: grid type %v", ErrShape, grid)
	}
	s.grid = grid
	s.coords = coords
	box := boxOfCoords(s.NodeCoords())
	s.SetExternBounds(box.Min, box.Max)
	return nil
}

func (s *StructuredVolume) Topology() Topology { return Structured }

// Resolution returns the node count along each axis.
func (s *StructuredVolume) Resolution() [3]int { return s.res }

// GridType returns how nodes are placed in space.
func (s *StructuredVolume) GridType() GridType { return s.grid }

// NodesPerLine is the index stride between neighbours along y.
func (s *StructuredVolume) NodesPerLine() int { return s.res[0] }

// NodesPerSlice is the index stride between neighbours along z.
func (s *StructuredVolume) NodesPerSlice() int { return s.res[0] * s.res[1] }

// Index returns the linear node index of grid node (i, j, k).
func (s *StructuredVolume) Index(i, j, k int) int {
	return i + j*s.res[0] + k*s.res[0]*s.res[1]
}

func (s *StructuredVolume) nnodes() int { return s.res[0] * s.res[1] * s.res[2] }

// Scalar returns component 0 of node n.
func (s *StructuredVolume) Scalar(n int) float64 {
	return s.values.At(n * s.veclen)
}

// UpdateMinMaxCoords sets the object bounds to the index-space extent.
func (s *StructuredVolume) UpdateMinMaxCoords() {
	s.setObjectBounds(math32.Box3{
		Min: math32.Vec3(0, 0, 0),
		Max: math32.Vec3(float32(s.res[0]-1), float32(s.res[1]-1), float32(s.res[2]-1)),
	})
}

// Spacing returns the physical distance between neighbouring nodes of a
// uniform grid. Axes with a single node report zero.
func (s *StructuredVolume) Spacing() math32.Vector3 {
	if !s.hasObject {
		s.UpdateMinMaxCoords()
	}
	lo, hi := s.MinExternCoord(), s.MaxExternCoord()
	var sp [3]float32
	span := [3]float32{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	for a := 0; a < 3; a++ {
		if s.res[a] > 1 {
			sp[a] = span[a] / float32(s.res[a]-1)
		}
	}
	return math32.Vec3(sp[0], sp[1], sp[2])
}

// NodeCoords returns one physical xyz triple per node. Uniform grids are
// synthesized from the external bounds, rectilinear grids are expanded and
// irregular grids return their own coordinate array.
func (s *StructuredVolume) NodeCoords() []float32 {
	switch s.grid {
	case GridIrregular:
		return s.coords
	case GridRectilinear:
		xs := s.coords[:s.res[0]]
		ys := s.coords[s.res[0] : s.res[0]+s.res[1]]
		zs := s.coords[s.res[0]+s.res[1]:]
		out := make([]float32, 0, 3*s.nnodes())
		for k := 0; k < s.res[2]; k++ {
			for j := 0; j < s.res[1]; j++ {
				for i := 0; i < s.res[0]; i++ {
					out = append(out, xs[i], ys[j], zs[k])
				}
			}
		}
		return out
	}
	lo := s.MinExternCoord()
	if !s.hasExtern && !s.hasObject {
		s.UpdateMinMaxCoords()
		lo = s.MinExternCoord()
	}
	sp := s.Spacing()
	out := make([]float32, 0, 3*s.nnodes())
	for k := 0; k < s.res[2]; k++ {
		for j := 0; j < s.res[1]; j++ {
			for i := 0; i < s.res[0]; i++ {
				out = append(out,
					lo.X+float32(i)*sp.X,
					lo.Y+float32(j)*sp.Y,
					lo.Z+float32(k)*sp.Z)
			}
		}
	}
	return out
}
