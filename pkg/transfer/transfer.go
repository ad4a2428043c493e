// Package transfer maps normalized scalar values to display colors and
// opacities through fixed-resolution lookup tables.
package transfer

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultResolution is the table length used when none is configured.
const DefaultResolution = 256

// Hue sweep endpoints, in degrees.
const (
	hueStart = 240.0 // blue
	hueEnd   = 0.0   // red
)

// RGB is a color with components in [0,1].
type RGB [3]float32

// ColorMap is a table of resolution RGB entries.
type ColorMap struct {
	table []RGB
}

// NewColorMap returns a color map filled by Create.
func NewColorMap(resolution int) *ColorMap {
	c := &ColorMap{}
	c.Create(resolution)
	return c
}

// Create fills the table by sweeping hue linearly from blue down to red at
// full saturation and value.
func (c *ColorMap) Create(resolution int) {
	c.table = make([]RGB, resolution)
	for i := range c.table {
		t := 0.0
		if resolution > 1 {
			t = float64(i) / float64(resolution-1)
		}
		hue := hueStart + t*(hueEnd-hueStart)
		col := colorful.Hsv(hue, 1, 1)
		c.table[i] = RGB{float32(col.R), float32(col.G), float32(col.B)}
	}
}

// Resolution returns the table length.
func (c *ColorMap) Resolution() int { return len(c.table) }

// At returns entry i. i must be in [0, Resolution()); callers clamp.
func (c *ColorMap) At(i int) RGB { return c.table[i] }

// Set overwrites entry i.
func (c *ColorMap) Set(i int, rgb RGB) { c.table[i] = rgb }

// OpacityMap is a table of resolution opacities in [0,1].
type OpacityMap struct {
	table []float32
}

// NewOpacityMap returns an opacity map filled by Create.
func NewOpacityMap(resolution int) *OpacityMap {
	o := &OpacityMap{}
	o.Create(resolution)
	return o
}

// Create fills a linear ramp i/(resolution-1).
func (o *OpacityMap) Create(resolution int) {
	o.table = make([]float32, resolution)
	if resolution == 1 {
		o.table[0] = 1
		return
	}
	for i := range o.table {
		o.table[i] = float32(i) / float32(resolution-1)
	}
}

// Resolution returns the table length.
func (o *OpacityMap) Resolution() int { return len(o.table) }

// At returns entry i. i must be in [0, Resolution()); callers clamp.
func (o *OpacityMap) At(i int) float32 { return o.table[i] }

// Set overwrites entry i.
func (o *OpacityMap) Set(i int, v float32) { o.table[i] = v }

// Function composes a ColorMap and an OpacityMap of equal resolution. It
// is read-only while mappers run and may be shared between them.
type Function struct {
	Colors    *ColorMap
	Opacities *OpacityMap
}

// New builds the procedural transfer function: an HSV color sweep and a
// linear opacity ramp.
func New(resolution int) (*Function, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("transfer: resolution must be positive, got %d", resolution)
	}
	return &Function{
		Colors:    NewColorMap(resolution),
		Opacities: NewOpacityMap(resolution),
	}, nil
}

// FromTables builds a transfer function from flat tables, as returned by
// a Reader: one opacity and one RGB triple per entry.
func FromTables(opacities, colors []float32) (*Function, error) {
	if len(opacities) == 0 {
		return nil, fmt.Errorf("transfer: empty opacity table")
	}
	if len(colors) != 3*len(opacities) {
		return nil, fmt.Errorf("transfer: %d color components for %d opacities", len(colors), len(opacities))
	}
	for i, o := range opacities {
		if !(o >= 0 && o <= 1) {
			return nil, fmt.Errorf("%w: opacity %d is %g, outside [0, 1]", ErrMalformed, i, o)
		}
	}
	f := &Function{
		Colors:    &ColorMap{table: make([]RGB, len(opacities))},
		Opacities: &OpacityMap{table: make([]float32, len(opacities))},
	}
	copy(f.Opacities.table, opacities)
	for i := range f.Colors.table {
		f.Colors.table[i] = RGB{colors[i*3], colors[i*3+1], colors[i*3+2]}
	}
	return f, nil
}

// Resolution returns the shared table length. It panics if the two tables
// disagree, which only happens when they were mutated independently.
func (f *Function) Resolution() int {
	if f.Colors.Resolution() != f.Opacities.Resolution() {
		panic(fmt.Sprintf("transfer: color map resolution %d != opacity map resolution %d",
			f.Colors.Resolution(), f.Opacities.Resolution()))
	}
	return f.Colors.Resolution()
}

// Index maps a value inside [min, max] to a clamped table index.
func (f *Function) Index(value, min, max float64) int {
	return IndexOf(value, min, max, f.Resolution())
}

// Color looks up the color of a value inside [min, max].
func (f *Function) Color(value, min, max float64) RGB {
	return f.Colors.At(f.Index(value, min, max))
}

// Opacity looks up the opacity of a value inside [min, max].
func (f *Function) Opacity(value, min, max float64) float32 {
	return f.Opacities.At(f.Index(value, min, max))
}

// IndexOf computes (value-min)/(max-min)*(resolution-1), clamped to the
// table. A degenerate range maps everything to entry 0.
func IndexOf(value, min, max float64, resolution int) int {
	span := max - min
	if span <= 0 || math.IsNaN(value) {
		return 0
	}
	r := (value - min) / span
	if r <= 0 {
		return 0
	}
	if r >= 1 {
		return resolution - 1
	}
	return int(r * float64(resolution-1))
}
