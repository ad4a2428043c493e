package volume

import "fmt"

// CellType is the element type of an unstructured volume.
type CellType int

const (
	CellTetrahedra CellType = iota
	CellHexahedra
)

func (c CellType) String() string {
	switch c {
	case CellTetrahedra:
		return "tetrahedra"
	case CellHexahedra:
		return "hexahedra"
	default:
		return fmt.Sprintf("CellType(%d)", int(c))
	}
}

// NodesPerCell returns the number of connectivity entries per cell, or
// zero for an unknown cell type.
func (c CellType) NodesPerCell() int {
	switch c {
	case CellTetrahedra:
		return 4
	case CellHexahedra:
		return 8
	}
	return 0
}

// ParseCellType converts "tetrahedra" or "hexahedra" to a CellType.
func ParseCellType(s string) (CellType, error) {
	switch s {
	case "tetrahedra", "tet", "tets":
		return CellTetrahedra, nil
	case "hexahedra", "hex", "hexes":
		return CellHexahedra, nil
	}
	return 0, fmt.Errorf("volume: unknown cell type %q", s)
}

// UnstructuredVolume is a set of nodes with explicit coordinates joined
// into cells by a connectivity array. Hexahedral cells list their corners
// in the order 000, 100, 110, 010, 001, 101, 111, 011.
type UnstructuredVolume struct {
	base
	coords []float32
	conn   []int32
	cell   CellType
}

var _ Volume = (*UnstructuredVolume)(nil)

// NewUnstructured creates an unstructured volume. Coords holds one xyz
// triple per node. The connectivity length is only checked for known
// cell types.
func NewUnstructured(coords []float32, conn []int32, cell CellType, veclen int, values Array) (*UnstructuredVolume, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates is not a multiple of 3", ErrShape, len(coords))
	}
	if veclen < 1 {
		return nil, fmt.Errorf("%w: veclen %d", ErrShape, veclen)
	}
	nnodes := len(coords) / 3
	if values == nil || values.Len() != nnodes*veclen {
		got := 0
		if values != nil {
			got = values.Len()
		}
		return nil, fmt.Errorf("%w: %d values for %d nodes x %d components", ErrShape, got, nnodes, veclen)
	}
	if npc := cell.NodesPerCell(); npc > 0 && len(conn)%npc != 0 {
		return nil, fmt.Errorf("%w: %d connections is not a multiple of %d for %v", ErrShape, len(conn), npc, cell)
	}
	for i, c := range conn {
		if c < 0 || int(c) >= nnodes {
			return nil, fmt.Errorf("%w: connection %d references node %d of %d", ErrShape, i, c, nnodes)
		}
	}
	return &UnstructuredVolume{
		base:   base{veclen: veclen, values: values},
		coords: coords,
		conn:   conn,
		cell:   cell,
	}, nil
}

func (u *UnstructuredVolume) Topology() Topology { return Unstructured }

// Coords returns one xyz triple per node.
func (u *UnstructuredVolume) Coords() []float32 { return u.coords }

// Connections returns the cell connectivity.
func (u *UnstructuredVolume) Connections() []int32 { return u.conn }

// CellType returns the element type of the cells.
func (u *UnstructuredVolume) CellType() CellType { return u.cell }

// NCells returns the number of cells, or zero for an unknown cell type.
func (u *UnstructuredVolume) NCells() int {
	npc := u.cell.NodesPerCell()
	if npc == 0 {
		return 0
	}
	return len(u.conn) / npc
}

// Scalar returns component 0 of node n.
func (u *UnstructuredVolume) Scalar(n int) float64 {
	return u.values.At(n * u.veclen)
}

// UpdateMinMaxCoords sets the object bounds to the extent of the node
// coordinates.
func (u *UnstructuredVolume) UpdateMinMaxCoords() {
	u.setObjectBounds(boxOfCoords(u.coords))
}
