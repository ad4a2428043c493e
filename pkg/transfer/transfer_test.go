package transfer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorMapSweep(t *testing.T) {
	for _, res := range []int{2, 16, 256} {
		c := NewColorMap(res)
		require.Equal(t, res, c.Resolution())

		first := c.At(0)
		assert.InDelta(t, 0, first[0], 1e-6, "first entry is blue")
		assert.InDelta(t, 0, first[1], 1e-6)
		assert.InDelta(t, 1, first[2], 1e-6)
		last := c.At(res - 1)
		assert.InDelta(t, 1, last[0], 1e-6, "last entry is red")
		assert.InDelta(t, 0, last[2], 1e-6)

		prevHue := 361.0
		for i := 0; i < res; i++ {
			rgb := c.At(i)
			h, s, v := colorful.Color{R: float64(rgb[0]), G: float64(rgb[1]), B: float64(rgb[2])}.Hsv()
			assert.InDelta(t, 1, s, 1e-5)
			assert.InDelta(t, 1, v, 1e-5)
			assert.LessOrEqual(t, h, prevHue+1e-6, "hue must not increase at entry %d of %d", i, res)
			prevHue = h
		}
	}
}

func TestOpacityMapRamp(t *testing.T) {
	o := NewOpacityMap(5)
	want := []float32{0, 0.25, 0.5, 0.75, 1}
	for i, w := range want {
		assert.InDelta(t, w, o.At(i), 1e-7)
	}
	single := NewOpacityMap(1)
	assert.Equal(t, float32(1), single.At(0))
}

func TestFunctionResolution(t *testing.T) {
	f, err := New(DefaultResolution)
	require.NoError(t, err)
	assert.Equal(t, DefaultResolution, f.Resolution())

	f.Opacities.Create(8)
	assert.Panics(t, func() { f.Resolution() })

	_, err = New(0)
	assert.Error(t, err)
}

func TestIndexOf(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		min, max   float64
		resolution int
		want       int
	}{
		{"low end", 0, 0, 10, 256, 0},
		{"high end", 10, 0, 10, 256, 255},
		{"midpoint", 5, 0, 10, 256, 127},
		{"below range clamps", -3, 0, 10, 256, 0},
		{"above range clamps", 30, 0, 10, 256, 255},
		{"degenerate range", 4, 4, 4, 256, 0},
		{"small table", 10, 0, 10, 4, 3},
		{"far above range", 1e20, 0, 1, 256, 255},
		{"far below range", -1e20, 0, 1, 256, 0},
		{"infinite", math.Inf(1), 0, 1, 256, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexOf(tt.value, tt.min, tt.max, tt.resolution))
		})
	}
}

func TestFromTables(t *testing.T) {
	f, err := FromTables([]float32{0, 1}, []float32{1, 0, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Resolution())
	assert.Equal(t, RGB{0, 0, 1}, f.Color(1, 0, 1))
	assert.Equal(t, float32(1), f.Opacity(1, 0, 1))

	_, err = FromTables([]float32{0, 1}, []float32{1, 0, 0})
	assert.Error(t, err)
	_, err = FromTables(nil, nil)
	assert.Error(t, err)
	_, err = FromTables([]float32{0, 2.5}, []float32{1, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrMalformed)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReaderTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tf.dat", "# opacity r g b\n0 0 0 1\n0.5 0 1 0\n\n1 1 0 0\n")
	path := writeFile(t, dir, "tf.toml", "resolution = 3\ndata = \"tf.dat\"\n")

	f, err := Load(FileReader{}, path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Resolution())
	assert.Equal(t, float32(0.5), f.Opacities.At(1))
	assert.Equal(t, RGB{1, 0, 0}, f.Colors.At(2))
}

func TestFileReaderYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tf.dat", "0 0 0 1\n1 1 0 0\n")
	path := writeFile(t, dir, "tf.yaml", "resolution: 2\ndata: tf.dat\n")

	op, col, err := FileReader{}.Read(path)
	require.NoError(t, err)
	assert.Len(t, op, 2)
	assert.Len(t, col, 6)
}

func TestFileReaderFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "short.dat", "0 0 0 1\n")
	writeFile(t, dir, "bad.dat", "0 0 zero 1\n")
	writeFile(t, dir, "opaque.dat", "2.5 1 0 0\n")
	writeFile(t, dir, "negative.dat", "-0.1 1 0 0\n")

	tests := []struct {
		name       string
		descriptor string
		want       error
	}{
		{"missing resolution", "data = \"short.dat\"\n", ErrMissingResolution},
		{"missing data attribute", "resolution = 1\n", ErrMissingData},
		{"too few rows", "resolution = 2\ndata = \"short.dat\"\n", ErrMalformed},
		{"bad number", "resolution = 1\ndata = \"bad.dat\"\n", ErrMalformed},
		{"garbage descriptor", "resolution = = 1\n", ErrMalformed},
		{"opacity above one", "resolution = 1\ndata = \"opaque.dat\"\n", ErrMalformed},
		{"negative opacity", "resolution = 1\ndata = \"negative.dat\"\n", ErrMalformed},
		{"missing data file", "resolution = 1\ndata = \"nope.dat\"\n", os.ErrNotExist},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "case"+string(rune('a'+i))+".toml", tt.descriptor)
			_, _, err := FileReader{}.Read(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, _, err := FileReader{}.Read(filepath.Join(dir, "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
