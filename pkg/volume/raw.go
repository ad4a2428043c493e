package volume

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ReadRaw reads a headerless little-endian structured volume of the given
// element kind and resolution. Exactly Nx*Ny*Nz elements are consumed.
func ReadRaw(r io.Reader, kind Kind, res [3]int) (*StructuredVolume, error) {
	size := kind.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	for i, n := range res {
		if n < 1 {
			return nil, fmt.Errorf("%w: axis %d has %d nodes", ErrResolution, i, n)
		}
	}
	buf := make([]byte, res[0]*res[1]*res[2]*size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("volume: read raw %v data: %w", kind, err)
	}
	values, err := DecodeArray(kind, buf, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	return NewStructured(res, 1, values)
}

// LoadRaw opens a raw volume file. Files ending in .zst, .gz or .sz are
// decompressed with zstd, gzip or framed snappy respectively.
func LoadRaw(path string, kind Kind, res [3]int) (*StructuredVolume, error) {
	if path == "" {
		return nil, fmt.Errorf("volume: raw path must be provided")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("volume: open zstd stream: %w", err)
		}
		defer dec.Close()
		reader = dec
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("volume: open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	case ".sz":
		reader = snappy.NewReader(file)
	}

	vol, err := ReadRaw(reader, kind, res)
	if err != nil {
		return nil, fmt.Errorf("volume: load %s: %w", filepath.Base(path), err)
	}
	return vol, nil
}
