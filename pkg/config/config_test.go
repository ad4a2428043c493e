package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, FormatSTL, c.Format)
	assert.Equal(t, 256, c.TransferResolution)
	assert.Equal(t, 5*time.Second, c.Timeout())
	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "voxmap.toml", `
log_level = "debug"
output_dir = "out"
format = "json"
transfer_resolution = 64
seed = 42
eval_timeout = "250ms"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", c.OutputDir)
	assert.Equal(t, FormatJSON, c.Format)
	assert.Equal(t, 64, c.TransferResolution)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 250*time.Millisecond, c.Timeout())
	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := write(t, "voxmap.yaml", "format: json\nseed: 9\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, c.Format)
	assert.Equal(t, int64(9), c.Seed)
	assert.Equal(t, ".", c.OutputDir)
	assert.Equal(t, 256, c.TransferResolution)
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"bad format", "a.toml", `format = "obj"`},
		{"bad resolution", "b.toml", `transfer_resolution = 0`},
		{"bad level", "c.yml", "log_level: loud\n"},
		{"bad timeout", "d.toml", `eval_timeout = "soon"`},
		{"negative timeout", "e.toml", `eval_timeout = "-1s"`},
		{"syntax", "f.toml", `format = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(write(t, "g.toml", `format = "obj"`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		name                  string
		debug, verbose, quiet bool
		want                  slog.Level
	}{
		{"none", false, false, false, slog.LevelWarn},
		{"debug", true, false, false, slog.LevelDebug},
		{"verbose", false, true, false, slog.LevelInfo},
		{"quiet", false, false, true, slog.LevelError},
		{"debug wins", true, true, true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromFlags(tt.debug, tt.verbose, tt.quiet, slog.LevelWarn))
		})
	}
}
