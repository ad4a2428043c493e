package main

import (
	"strings"
	"testing"

	"github.com/chazu/voxmap/pkg/config"
)

func TestE2EEmptySourceExtended(t *testing.T) {
	result := NewApp().Evaluate("")

	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Points == nil {
		t.Error("Points should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	source := "(+ 1 2)\n(volume :shape \"box\""
	result := NewApp().Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ECommentsOnly(t *testing.T) {
	result := NewApp().Evaluate(";; nothing here\n; or here\n")
	if len(result.Errors) != 0 {
		t.Errorf("comments only should not error: %v", result.Errors)
	}
	if len(result.Meshes) != 0 || len(result.Points) != 0 {
		t.Error("comments only should produce no geometry")
	}
}

func TestE2EVolumeWithoutSteps(t *testing.T) {
	result := NewApp().Evaluate(`(volume :shape "sphere" :size 4)`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestE2EUnknownShape(t *testing.T) {
	// The script is valid; building the volume fails.
	result := NewApp().Evaluate(`(volume :shape "torus") (isosurface)`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "unknown shape") {
		t.Errorf("error = %q", result.Errors[0].Message)
	}
	if len(result.Meshes) != 0 {
		t.Error("no geometry expected after a pipeline failure")
	}
}

func TestE2EMissingRawFile(t *testing.T) {
	result := NewApp().Evaluate(`(raw "does-not-exist.raw" :kind "uint8" :res 4) (vertices)`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "pipeline: build volume") {
		t.Errorf("error = %q", result.Errors[0].Message)
	}
}

func TestE2EMetropolisOnFloatVolume(t *testing.T) {
	result := NewApp().Evaluate(`(volume :shape "sphere" :size 4 :res 8) (metropolis :particles 10)`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "metropolis") {
		t.Errorf("error should name the step: %q", result.Errors[0].Message)
	}
}

func TestE2EConfigSeedAndResolution(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 99
	cfg.TransferResolution = 4
	source := `(volume :shape "box" :size 4 :res 8 :quantize "uint8") (metropolis :particles 50)`

	a := NewAppWithConfig(cfg).Evaluate(source)
	b := NewAppWithConfig(cfg).Evaluate(source)
	if len(a.Errors) > 0 || len(b.Errors) > 0 {
		t.Fatalf("unexpected errors: %v %v", a.Errors, b.Errors)
	}
	pa, pb := a.Points[0].Points, b.Points[0].Points
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("coordinate %d differs between apps sharing a seed", i)
		}
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources on one App. zygomys
	// keeps global state, so calls stay sequential.
	app := NewApp()

	sources := []string{
		`(volume :shape "box" :size 4 :res 6) (isosurface)`,
		`(volume :shape "box"`,
		``,
		`(isosurface)`,
		`(volume :shape "sphere" :size 4 :res 6) (ortho-slice :axis :x :at 2.5)`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(volume :shape "cylinder" :size 4 :res 6) (vertices)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	// The engine is still usable afterwards.
	result := app.Evaluate(`(volume :shape "box" :size 4 :res 6) (isosurface :level -0.5)`)
	if len(result.Errors) > 0 || len(result.Meshes) != 1 {
		t.Errorf("final evaluation: errors %v, meshes %d", result.Errors, len(result.Meshes))
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	// More per-vertex colored slices than palette entries.
	var b strings.Builder
	b.WriteString(`(volume :shape "box" :size 4 :res 6)` + "\n")
	for i := 0; i < len(colorPalette)+2; i++ {
		b.WriteString("(ortho-slice :axis :z :at 2.5)\n")
	}
	result := NewApp().Evaluate(b.String())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != len(colorPalette)+2 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+2, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d color = %q, want %q", i, m.Color, want)
		}
	}
}
