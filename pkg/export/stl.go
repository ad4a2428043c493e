package export

import (
	"errors"
	"fmt"

	"github.com/chazu/voxmap/pkg/geom"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrEmpty is returned when asked to write geometry with no triangles.
var ErrEmpty = errors.New("export: empty geometry")

// Triangles converts a polygon object to a triangle soup, resolving
// connectivity.
func Triangles(p *geom.PolygonObject) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, p.TriangleCount())
	for t := 0; t < p.TriangleCount(); t++ {
		var tri sdf.Triangle3
		for j, v := range p.Triangle(t) {
			c := p.Vertex(v)
			tri[j] = v3.Vec{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])}
		}
		out = append(out, &tri)
	}
	return out
}

// SaveSTL writes a polygon object as a binary STL file.
func SaveSTL(path string, p *geom.PolygonObject) error {
	if p.TriangleCount() == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if err := render.SaveSTL(path, Triangles(p)); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
