package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/voxmap/pkg/mapper"
	"github.com/chazu/voxmap/pkg/pipeline"
	"github.com/chazu/voxmap/pkg/solid"
	"github.com/chazu/voxmap/pkg/volume"
)

// spherePlan returns a plan over a sampled sphere of diameter 10.
func spherePlan(steps ...pipeline.Step) *pipeline.Plan {
	return &pipeline.Plan{
		Source: pipeline.Source{Shape: "sphere", Size: 10, Res: [3]int{12, 12, 12}},
		Steps:  steps,
	}
}

func isoStep(level float64) pipeline.Step {
	return pipeline.Step{
		Kind: pipeline.StepIsosurface,
		Iso:  mapper.IsoOptions{Isolevel: level, Duplicate: true},
	}
}

func TestRunSphereIsosurface(t *testing.T) {
	results, err := pipeline.Run(context.Background(), spherePlan(isoStep(-1)), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Name != "isosurface-0" {
		t.Errorf("name = %q, want isosurface-0", r.Name)
	}
	poly := r.Polygons()
	if poly == nil {
		t.Fatalf("geometry is %T, want polygons", r.Geometry)
	}
	if poly.TriangleCount() == 0 {
		t.Fatal("expected triangles")
	}
	if r.Points() != nil {
		t.Error("polygon result should not convert to points")
	}
}

func TestRunStepsInOrder(t *testing.T) {
	plan := spherePlan(
		isoStep(-1),
		pipeline.Step{Kind: pipeline.StepSlice, Plane: mapper.OrthoPlane(mapper.AxisZ, 5.5)},
		pipeline.Step{Kind: pipeline.StepVertices, Name: "nodes"},
	)
	results, err := pipeline.Run(context.Background(), plan, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []string{"isosurface-0", "slice-1", "nodes"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("result %d name = %q, want %q", i, results[i].Name, name)
		}
	}
	if results[1].Polygons().TriangleCount() == 0 {
		t.Error("slice through the middle of the grid should not be empty")
	}
	if got := results[2].Points().PointCount(); got != 12*12*12 {
		t.Errorf("vertices = %d, want %d", got, 12*12*12)
	}
}

func TestRunMetropolisNeedsIntegerVolume(t *testing.T) {
	step := pipeline.Step{Kind: pipeline.StepMetropolis, Particles: 100}
	_, err := pipeline.Run(context.Background(), spherePlan(step), pipeline.Options{Seed: 3})
	if !errors.Is(err, mapper.ErrUnsupportedSampleType) {
		t.Fatalf("err = %v, want ErrUnsupportedSampleType", err)
	}

	plan := spherePlan(step)
	plan.Source.Quantize = "uint8"
	results, err := pipeline.Run(context.Background(), plan, pipeline.Options{Seed: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := results[0].Points().PointCount(); got != 100 {
		t.Errorf("particles = %d, want 100", got)
	}
}

func TestRunMetropolisSeedFallback(t *testing.T) {
	plan := spherePlan(pipeline.Step{Kind: pipeline.StepMetropolis, Particles: 50})
	plan.Source.Quantize = "uint8"
	opts := pipeline.Options{Seed: 11}

	a, err := pipeline.Run(context.Background(), plan, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := pipeline.Run(context.Background(), plan, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	pa, pb := a[0].Points().Coords, b[0].Points().Coords
	if len(pa) != len(pb) {
		t.Fatalf("lengths differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("coordinate %d differs between runs with the same seed", i)
		}
	}
}

func TestBuildVolumeSolid(t *testing.T) {
	box, err := solid.Box(8, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	ball, err := solid.Sphere(3)
	if err != nil {
		t.Fatal(err)
	}
	// The solid wins over a shape name.
	src := pipeline.Source{Shape: "teapot", Solid: solid.Difference(box, ball), Res: [3]int{9, 9, 9}}
	v, err := pipeline.BuildVolume(src)
	if err != nil {
		t.Fatalf("BuildVolume failed: %v", err)
	}
	s, ok := v.(*volume.StructuredVolume)
	if !ok {
		t.Fatalf("volume is %T, want structured", v)
	}
	if d := s.Scalar(s.Index(4, 4, 4)); d != 3 {
		t.Errorf("center of the hollow = %v, want 3", d)
	}
	if d := s.Scalar(s.Index(1, 1, 1)); d >= 0 {
		t.Errorf("node inside the shell = %v, want negative", d)
	}
}

func TestRunTetrahedraCells(t *testing.T) {
	plan := spherePlan(isoStep(-1))
	plan.Source.Res = [3]int{6, 6, 6}
	plan.Source.Cells = "tetrahedra"
	results, err := pipeline.Run(context.Background(), plan, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if results[0].Polygons().TriangleCount() == 0 {
		t.Fatal("expected triangles from marching tetrahedra")
	}

	vol, err := pipeline.BuildVolume(plan.Source)
	if err != nil {
		t.Fatalf("BuildVolume failed: %v", err)
	}
	u, ok := vol.(*volume.UnstructuredVolume)
	if !ok {
		t.Fatalf("volume is %T, want unstructured", vol)
	}
	if u.CellType() != volume.CellTetrahedra {
		t.Errorf("cell type = %v", u.CellType())
	}
}

func TestRunRawSource(t *testing.T) {
	// 4x4x4 uint8 ramp along x: 0, 80, 160, 240.
	data := make([]byte, 0, 64)
	for k := 0; k < 4; k++ {
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				data = append(data, byte(80*i))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "ramp.raw")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	plan := &pipeline.Plan{
		Source: pipeline.Source{RawPath: path, Kind: "uint8", Res: [3]int{4, 4, 4}},
		Steps:  []pipeline.Step{isoStep(120)},
	}
	results, err := pipeline.Run(context.Background(), plan, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	poly := results[0].Polygons()
	// The plane x=1.5 crosses 3x3 cells, two triangles each.
	if poly.TriangleCount() != 18 {
		t.Errorf("triangles = %d, want 18", poly.TriangleCount())
	}
	for v := 0; v < poly.VertexCount(); v++ {
		if x := poly.Vertex(v)[0]; x != 1.5 {
			t.Fatalf("vertex %d at x=%v, want 1.5", v, x)
		}
	}
}

func TestRunTransferFile(t *testing.T) {
	dir := t.TempDir()
	desc := filepath.Join(dir, "tf.toml")
	if err := os.WriteFile(desc, []byte("resolution = 2\ndata = \"tf.dat\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := "1 0.5 0 0.25\n1 0.5 0 0.25\n"
	if err := os.WriteFile(filepath.Join(dir, "tf.dat"), []byte(rows), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	plan := spherePlan(isoStep(-1))
	plan.Transfer = pipeline.TransferSpec{File: desc, Resolution: 64}

	tf, err := pipeline.BuildTransfer(plan.Transfer, pipeline.Options{})
	if err != nil {
		t.Fatalf("BuildTransfer failed: %v", err)
	}
	if tf.Resolution() != 2 {
		t.Errorf("resolution = %d, want 2 from the file", tf.Resolution())
	}

	results, err := pipeline.Run(context.Background(), plan, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []float32{0.5, 0, 0.25}
	got := results[0].Polygons().Colors
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("overall color = %v, want %v", got, want)
	}
}

func TestBuildTransferFallbacks(t *testing.T) {
	tf, err := pipeline.BuildTransfer(pipeline.TransferSpec{}, pipeline.Options{TransferResolution: 16})
	if err != nil {
		t.Fatalf("BuildTransfer failed: %v", err)
	}
	if tf.Resolution() != 16 {
		t.Errorf("resolution = %d, want 16", tf.Resolution())
	}
	tf, err = pipeline.BuildTransfer(pipeline.TransferSpec{}, pipeline.Options{})
	if err != nil {
		t.Fatalf("BuildTransfer failed: %v", err)
	}
	if tf.Resolution() != 256 {
		t.Errorf("resolution = %d, want 256", tf.Resolution())
	}
}

func TestRunErrors(t *testing.T) {
	_, err := pipeline.Run(context.Background(), &pipeline.Plan{}, pipeline.Options{})
	if !errors.Is(err, pipeline.ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pipeline.Run(ctx, spherePlan(isoStep(-1)), pipeline.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	bad := spherePlan()
	bad.Source.Shape = "torus"
	if _, err := pipeline.Run(context.Background(), bad, pipeline.Options{}); err == nil {
		t.Error("expected an error for an unknown shape")
	}

	results, err := pipeline.Run(context.Background(), nil, pipeline.Options{})
	if err != nil || results != nil {
		t.Errorf("nil plan = %v, %v", results, err)
	}
}
