// Package config holds the runtime settings of the voxmap CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatSTL  = "stl"
	FormatJSON = "json"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Duration is a time.Duration read from strings such as "5s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the full set of settings. Zero fields in a loaded file keep
// their defaults.
type Config struct {
	LogLevel           string   `toml:"log_level" yaml:"log_level"`
	OutputDir          string   `toml:"output_dir" yaml:"output_dir"`
	Format             string   `toml:"format" yaml:"format"`
	TransferResolution int      `toml:"transfer_resolution" yaml:"transfer_resolution"`
	Seed               int64    `toml:"seed" yaml:"seed"`
	EvalTimeout        Duration `toml:"eval_timeout" yaml:"eval_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:           "warn",
		OutputDir:          ".",
		Format:             FormatSTL,
		TransferResolution: 256,
		Seed:               1,
		EvalTimeout:        Duration(5 * time.Second),
	}
}

// Load reads a TOML file, or a YAML file when the extension is .yaml or
// .yml, over the defaults and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, c)
	default:
		err = toml.Unmarshal(raw, c)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filepath.Base(path), err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatSTL, FormatJSON:
	default:
		return fmt.Errorf("%w: format %q, want %q or %q", ErrInvalid, c.Format, FormatSTL, FormatJSON)
	}
	if c.TransferResolution < 1 {
		return fmt.Errorf("%w: transfer_resolution %d", ErrInvalid, c.TransferResolution)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("%w: eval_timeout %s", ErrInvalid, time.Duration(c.EvalTimeout))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Timeout returns EvalTimeout as a time.Duration.
func (c *Config) Timeout() time.Duration { return time.Duration(c.EvalTimeout) }

// LevelFromFlags maps the CLI verbosity flags to a level. The flags are
// checked in order, so debug wins over quiet.
//   - debug: [slog.LevelDebug]
//   - verbose: [slog.LevelInfo]
//   - quiet: [slog.LevelError]
//   - none: fallback
func LevelFromFlags(debug, verbose, quiet bool, fallback slog.Level) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return fallback
	}
}
