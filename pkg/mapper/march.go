package mapper

import (
	"math"

	"github.com/chazu/voxmap/pkg/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// crossing is the point where a cell edge crosses the level, expressed as
// the edge's end corners and the fraction t travelled from a to b.
type crossing struct {
	p    r3.Vec
	a, b int
	t    float64
}

// caseIndex sets bit c for every corner whose value is strictly above
// level.
func caseIndex(values []float64, level float64) int {
	idx := 0
	for c, v := range values {
		if v > level {
			idx |= 1 << c
		}
	}
	return idx
}

// edgeRatio is the fraction of the way from v0 to v1 at which the linear
// interpolant reaches level.
func edgeRatio(level, v0, v1 float64) float64 {
	d := v1 - v0
	if d == 0 {
		return 0
	}
	return math.Abs((level - v0) / d)
}

// march triangulates one cell. pos and values are indexed by corner, edges
// maps an edge number to its corners and row is the case table entry for
// the cell, terminated by -1. emit is called once per triangle.
func march(pos []r3.Vec, values []float64, level float64, edges [][2]int, row []int8, emit func(tri *[3]crossing)) {
	var tri [3]crossing
	for t := 0; t+2 < len(row) && row[t] != -1; t += 3 {
		for e := 0; e < 3; e++ {
			ends := edges[row[t+e]]
			a, b := ends[0], ends[1]
			r := edgeRatio(level, values[a], values[b])
			tri[e] = crossing{p: lerp(pos[a], pos[b], r), a: a, b: b, t: r}
		}
		emit(&tri)
	}
}

// forEachCell visits every cell of a structured volume in x-fastest order
// with the node index of each corner.
func forEachCell(s *volume.StructuredVolume, fn func(i, j, k int, nodes *[8]int)) {
	res := s.Resolution()
	var nodes [8]int
	for k := 0; k < res[2]-1; k++ {
		for j := 0; j < res[1]-1; j++ {
			for i := 0; i < res[0]-1; i++ {
				for c, off := range cubeCornerOffset {
					nodes[c] = s.Index(i+off[0], j+off[1], k+off[2])
				}
				fn(i, j, k, &nodes)
			}
		}
	}
}

// cellCorners fills the index-space corner positions of cell (i, j, k).
func cellCorners(i, j, k int, pos *[8]r3.Vec) {
	for c, off := range cubeCornerOffset {
		pos[c] = r3.Vec{X: float64(i + off[0]), Y: float64(j + off[1]), Z: float64(k + off[2])}
	}
}

// coordsAt reads node n of a flat xyz coordinate array.
func coordsAt(coords []float32, n int) r3.Vec {
	return r3.Vec{X: float64(coords[3*n]), Y: float64(coords[3*n+1]), Z: float64(coords[3*n+2])}
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// faceNormal returns the unnormalized normal of a triangle.
func faceNormal(p0, p1, p2 r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
}

// unit normalizes v, leaving a zero vector unchanged.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

func appendVec(dst []float32, v r3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}
