package volume

import "fmt"

// hexCorner lists the index-space offsets of a hexahedron's corners in
// the order shared by the cube case table.
var hexCorner = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// hexToTets splits a hexahedron into six tetrahedra around the 0-6
// diagonal.
var hexToTets = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
	{0, 5, 1, 6},
}

// Tetrahedralize converts a structured volume into an unstructured one
// with the same nodes and values. Node coordinates are grid indices, so
// geometry extracted from either volume lands in the same space.
func Tetrahedralize(s *StructuredVolume) (*UnstructuredVolume, error) {
	return toUnstructured(s, CellTetrahedra)
}

// Hexahedralize converts a structured volume into an unstructured volume
// of hexahedral cells.
func Hexahedralize(s *StructuredVolume) (*UnstructuredVolume, error) {
	return toUnstructured(s, CellHexahedra)
}

func toUnstructured(s *StructuredVolume, cell CellType) (*UnstructuredVolume, error) {
	res := s.Resolution()
	if res[0] < 2 || res[1] < 2 || res[2] < 2 {
		return nil, fmt.Errorf("%w: need at least one cell, resolution %v", ErrResolution, res)
	}
	coords := make([]float32, 0, 3*s.NNodes())
	for k := 0; k < res[2]; k++ {
		for j := 0; j < res[1]; j++ {
			for i := 0; i < res[0]; i++ {
				coords = append(coords, float32(i), float32(j), float32(k))
			}
		}
	}

	ncells := (res[0] - 1) * (res[1] - 1) * (res[2] - 1)
	var conn []int32
	if cell == CellTetrahedra {
		conn = make([]int32, 0, ncells*6*4)
	} else {
		conn = make([]int32, 0, ncells*8)
	}
	var corners [8]int32
	for k := 0; k < res[2]-1; k++ {
		for j := 0; j < res[1]-1; j++ {
			for i := 0; i < res[0]-1; i++ {
				for c, off := range hexCorner {
					corners[c] = int32(s.Index(i+off[0], j+off[1], k+off[2]))
				}
				if cell == CellHexahedra {
					conn = append(conn, corners[:]...)
					continue
				}
				for _, tet := range hexToTets {
					conn = append(conn, corners[tet[0]], corners[tet[1]], corners[tet[2]], corners[tet[3]])
				}
			}
		}
	}

	u, err := NewUnstructured(coords, conn, cell, s.Veclen(), s.Values())
	if err != nil {
		return nil, err
	}
	if s.HasMinMaxValues() {
		u.SetMinMaxValues(s.MinValue(), s.MaxValue())
	}
	return u, nil
}
