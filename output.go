package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/voxmap/pkg/config"
	"github.com/chazu/voxmap/pkg/export"
	"github.com/chazu/voxmap/pkg/pipeline"
)

// writeResults writes one file per result into dir and returns the paths
// written. In STL format, point clouds have no STL form and are written as
// JSON instead; empty meshes are skipped.
func writeResults(dir, format string, results []pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	var written []string
	for _, r := range results {
		poly := r.Polygons()
		if format == config.FormatSTL && poly != nil {
			path := filepath.Join(dir, r.Name+".stl")
			err := export.SaveSTL(path, poly)
			if errors.Is(err, export.ErrEmpty) {
				slog.Warn("skipping empty mesh", "name", r.Name)
				continue
			}
			if err != nil {
				return written, err
			}
			written = append(written, path)
			continue
		}

		doc := &export.Document{}
		switch {
		case poly != nil:
			m, err := export.Mesh(r.Name, poly)
			if err != nil {
				return written, err
			}
			doc.Meshes = append(doc.Meshes, m)
		case r.Points() != nil:
			if format == config.FormatSTL {
				slog.Info("point cloud written as json", "name", r.Name)
			}
			doc.Points = append(doc.Points, export.Points(r.Name, r.Points()))
		default:
			return written, fmt.Errorf("output: result %q has unsupported geometry %T", r.Name, r.Geometry)
		}
		path := filepath.Join(dir, r.Name+".json")
		if err := export.SaveJSON(path, doc); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
