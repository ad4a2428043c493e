package transfer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingResolution = errors.New("transfer: missing resolution")
	ErrMissingData       = errors.New("transfer: missing data file")
	ErrMalformed         = errors.New("transfer: malformed data")
)

// Reader loads the tables of a persisted transfer function: resolution
// opacities and resolution RGB triples.
type Reader interface {
	Read(path string) (opacities, colors []float32, err error)
}

// descriptor is the on-disk header of a transfer function.
type descriptor struct {
	Resolution int    `toml:"resolution" yaml:"resolution"`
	Data       string `toml:"data" yaml:"data"`
}

// FileReader reads a TOML or YAML descriptor naming a resolution and a
// data file. The data file holds resolution rows of "opacity r g b"
// separated by whitespace; blank lines and # comments are skipped. A
// relative data path is resolved against the descriptor's directory.
type FileReader struct{}

var _ Reader = FileReader{}

// Read implements Reader.
func (FileReader) Read(path string) ([]float32, []float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: read descriptor: %w", err)
	}
	var d descriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &d)
	default:
		err = toml.Unmarshal(raw, &d)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filepath.Base(path), err)
	}
	if d.Resolution <= 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrMissingResolution, filepath.Base(path))
	}
	if d.Data == "" {
		return nil, nil, fmt.Errorf("%w in %s", ErrMissingData, filepath.Base(path))
	}
	dataPath := d.Data
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(filepath.Dir(path), dataPath)
	}
	return readTables(dataPath, d.Resolution)
}

func readTables(path string, resolution int) ([]float32, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: open data: %w", err)
	}
	defer f.Close()

	opacities := make([]float32, 0, resolution)
	colors := make([]float32, 0, 3*resolution)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("%w: line %d: want 4 fields, got %d", ErrMalformed, line, len(fields))
		}
		var row [4]float32
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			row[i] = float32(v)
		}
		if !(row[0] >= 0 && row[0] <= 1) {
			return nil, nil, fmt.Errorf("%w: line %d: opacity %g outside [0, 1]", ErrMalformed, line, row[0])
		}
		if len(opacities) == resolution {
			return nil, nil, fmt.Errorf("%w: more than %d rows", ErrMalformed, resolution)
		}
		opacities = append(opacities, row[0])
		colors = append(colors, row[1], row[2], row[3])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("transfer: read data: %w", err)
	}
	if len(opacities) != resolution {
		return nil, nil, fmt.Errorf("%w: %d rows for resolution %d", ErrMalformed, len(opacities), resolution)
	}
	return opacities, colors, nil
}

// Load reads a persisted transfer function with r.
func Load(r Reader, path string) (*Function, error) {
	opacities, colors, err := r.Read(path)
	if err != nil {
		return nil, err
	}
	return FromTables(opacities, colors)
}
