package main

import (
	"context"
	"log/slog"

	"github.com/chazu/voxmap/pkg/config"
	"github.com/chazu/voxmap/pkg/engine"
	"github.com/chazu/voxmap/pkg/export"
	"github.com/chazu/voxmap/pkg/pipeline"
)

// colorPalette is assigned to meshes that carry no overall color, such as
// slices colored per vertex.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine to the pipeline runner and the exporters.
type App struct {
	engine *engine.Engine
	opts   pipeline.Options
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating and running a script.
type EvalResult struct {
	Meshes   []*export.MeshData  `json:"meshes"`
	Points   []*export.PointData `json:"points"`
	Errors   []EvalErrorData     `json:"errors"`
	Warnings []EvalErrorData     `json:"warnings"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App honoring cfg's timeout, seed and
// transfer resolution.
func NewAppWithConfig(cfg *config.Config) *App {
	return &App{
		engine: engine.NewEngine(engine.WithTimeout(cfg.Timeout())),
		opts: pipeline.Options{
			TransferResolution: cfg.TransferResolution,
			Seed:               cfg.Seed,
		},
	}
}

// Evaluate takes Lisp source and returns mesh data, point data and errors.
func (a *App) Evaluate(source string) EvalResult {
	_, result := a.Run(context.Background(), source)
	return result
}

// Run evaluates source, executes the plan and converts every result. The
// raw pipeline results are returned alongside for writers that need the
// geometry itself; they are nil whenever result carries errors.
func (a *App) Run(ctx context.Context, source string) ([]pipeline.Result, EvalResult) {
	result := EvalResult{
		Meshes:   []*export.MeshData{},
		Points:   []*export.PointData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a plan.
	ev, err := a.engine.EvaluateFull(source)
	if err != nil {
		slog.Error("evaluate: fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}
	for _, w := range ev.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(ev.Errors) > 0 {
		for _, e := range ev.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, result
	}
	if len(ev.Plan.Steps) == 0 {
		return nil, result
	}

	// Step 2: Run the plan's mappers.
	results, err := pipeline.Run(ctx, ev.Plan, a.opts)
	if err != nil {
		slog.Error("pipeline failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}

	// Step 3: Convert geometry to the exported formats.
	for _, r := range results {
		if poly := r.Polygons(); poly != nil {
			m, err := export.Mesh(r.Name, poly)
			if err != nil {
				result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
				return nil, result
			}
			if m.Color == "" {
				m.Color = colorPalette[len(result.Meshes)%len(colorPalette)]
			}
			result.Meshes = append(result.Meshes, m)
			continue
		}
		if pts := r.Points(); pts != nil {
			result.Points = append(result.Points, export.Points(r.Name, pts))
		}
	}
	return results, result
}
