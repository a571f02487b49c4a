package lstack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abworrall/lightstack/pkg/imgio"
)

type fixture struct {
	sourceDir  string
	resultsDir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	return fixture{
		sourceDir:  filepath.Join(base, "source"),
		resultsDir: filepath.Join(base, "results"),
	}
}

func (f fixture) writeBatch(t *testing.T, name string, images map[string]imgio.PixelArray) {
	t.Helper()
	dir := filepath.Join(f.sourceDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for filename, img := range images {
		if err := imgio.Write(img, filepath.Join(dir, filename)); err != nil {
			t.Fatalf("write %s: %v", filename, err)
		}
	}
}

func (f fixture) compositor(t *testing.T, mutate func(*Config)) *Compositor {
	t.Helper()
	cfg := NewConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}

	run, err := AllocateRun(f.resultsDir)
	if err != nil {
		t.Fatalf("AllocateRun: %v", err)
	}
	return NewCompositor(cfg, run, nil)
}

func mustLoad(t *testing.T, filename string) imgio.PixelArray {
	t.Helper()
	pa, err := imgio.Load(filename)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return pa
}

func TestRunAll(t *testing.T) {
	f := newFixture(t)
	f.writeBatch(t, "0", map[string]imgio.PixelArray{
		"1.png": solid(3, 4, 10, 10, 10),
		"2.png": solid(3, 4, 200, 100, 0),
		"3.png": solid(3, 4, 50, 50, 50),
	})
	f.writeBatch(t, "1", map[string]imgio.PixelArray{
		"4.png": solid(2, 2, 0, 0, 1),
		"5.png": solid(2, 2, 255, 255, 255),
	})
	if err := os.WriteFile(filepath.Join(f.sourceDir, "0", "notes.txt"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	c := f.compositor(t, func(cfg *Config) { cfg.DumpSelectionMaps = true })
	if err := c.RunAll(context.Background(), f.sourceDir); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	runDir := filepath.Join(f.resultsDir, "run_1")
	checks := []struct {
		path string
		want imgio.PixelArray
	}{
		{filepath.Join(runDir, "Lighten", "0.png"), solid(3, 4, 200, 100, 0)},
		{filepath.Join(runDir, "Darken", "0.png"), solid(3, 4, 10, 10, 10)},
		{filepath.Join(runDir, "Lighten", "1.png"), solid(2, 2, 255, 255, 255)},
		{filepath.Join(runDir, "Darken", "1.png"), solid(2, 2, 0, 0, 1)},
	}
	for _, check := range checks {
		if diff := cmp.Diff(check.want, mustLoad(t, check.path)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", check.path, diff)
		}
	}

	contents, err := os.ReadDir(runDir)
	if err != nil {
		t.Fatal(err)
	}
	dirs, files := []string{}, []string{}
	for _, c := range contents {
		if c.IsDir() {
			dirs = append(dirs, c.Name())
		} else {
			files = append(files, c.Name())
		}
	}
	sort.Strings(files)
	if diff := cmp.Diff([]string{"Darken", "Lighten"}, dirs); diff != "" {
		t.Errorf("run folders mismatch (-want +got):\n%s", diff)
	}
	wantFiles := []string{
		"manifest.yaml",
		"selection-darken-0.png", "selection-darken-1.png",
		"selection-lighten-0.png", "selection-lighten-1.png",
	}
	if diff := cmp.Diff(wantFiles, files); diff != "" {
		t.Errorf("run files mismatch (-want +got):\n%s", diff)
	}

	m, err := LoadManifest(filepath.Join(runDir, ManifestFilename))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Run != 1 || len(m.Batches) != 2 {
		t.Fatalf("manifest has run %d, %d batches", m.Run, len(m.Batches))
	}
	b0 := m.Batches[0]
	if diff := cmp.Diff([]string{"1.png", "2.png", "3.png"}, b0.Members); diff != "" {
		t.Errorf("batch 0 members mismatch (-want +got):\n%s", diff)
	}
	if len(b0.Composites) != 2 {
		t.Fatalf("batch 0 has %d composites", len(b0.Composites))
	}
	if diff := cmp.Diff([]int{0, 12, 0}, b0.Composites[0].Wins); diff != "" {
		t.Errorf("lighten wins mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{12, 0, 0}, b0.Composites[1].Wins); diff != "" {
		t.Errorf("darken wins mismatch (-want +got):\n%s", diff)
	}
	if b0.Composites[0].MaxBrightness != 100 || b0.Composites[1].MinBrightness != 10 {
		t.Errorf("brightness stats look wrong: %+v", b0.Composites)
	}
}

func TestRunAllParallel(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"0", "1", "2", "3", "4", "5"} {
		f.writeBatch(t, name, map[string]imgio.PixelArray{
			"1.png": solid(2, 2, 1, 2, 3),
			"2.png": solid(2, 2, 4, 5, 6),
		})
	}

	c := f.compositor(t, func(cfg *Config) { cfg.Parallelism = 3 })
	if err := c.RunAll(context.Background(), f.sourceDir); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if got := len(c.Reports()); got != 6 {
		t.Errorf("got %d batch reports, wanted 6", got)
	}
	for _, name := range []string{"0", "1", "2", "3", "4", "5"} {
		got := mustLoad(t, c.Run.OutputPath(Modes[0], name, ".png"))
		if diff := cmp.Diff(solid(2, 2, 4, 5, 6), got); diff != "" {
			t.Errorf("batch %s lighten mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRunAllNoBatches(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.sourceDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.sourceDir, "1.png"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := f.compositor(t, nil).RunAll(context.Background(), f.sourceDir)

	var nbe NoBatchesError
	if !errors.As(err, &nbe) {
		t.Fatalf("expected NoBatchesError, got %v", err)
	}
}

func TestRunAllStopsOnShapeMismatch(t *testing.T) {
	f := newFixture(t)
	f.writeBatch(t, "0", map[string]imgio.PixelArray{
		"1.png": solid(2, 2, 0, 0, 0),
		"2.png": solid(2, 3, 0, 0, 0),
	})
	f.writeBatch(t, "1", map[string]imgio.PixelArray{
		"3.png": solid(2, 2, 0, 0, 0),
	})

	c := f.compositor(t, nil)
	err := c.RunAll(context.Background(), f.sourceDir)

	var sme ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
	if _, err := os.Stat(c.Run.OutputPath(Modes[0], "1", ".png")); !os.IsNotExist(err) {
		t.Errorf("batch 1 should not have been processed after batch 0 failed")
	}
	if _, err := os.Stat(filepath.Join(c.Run.Dir, ManifestFilename)); !os.IsNotExist(err) {
		t.Errorf("a failed run shouldn't write a manifest")
	}
}

func TestRunAllContinueOnError(t *testing.T) {
	f := newFixture(t)
	f.writeBatch(t, "0", map[string]imgio.PixelArray{
		"1.png": solid(2, 2, 0, 0, 0),
		"2.png": solid(3, 2, 0, 0, 0),
	})
	f.writeBatch(t, "1", map[string]imgio.PixelArray{
		"3.png": solid(2, 2, 7, 7, 7),
	})
	if err := os.MkdirAll(filepath.Join(f.sourceDir, "2"), 0755); err != nil {
		t.Fatal(err)
	}

	c := f.compositor(t, func(cfg *Config) { cfg.ContinueOnError = true })
	err := c.RunAll(context.Background(), f.sourceDir)
	if err == nil {
		t.Fatalf("expected the run to fail")
	}

	var sme ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Errorf("expected a ShapeMismatchError in %v", err)
	}

	got := mustLoad(t, c.Run.OutputPath(Modes[1], "1", ".png"))
	if diff := cmp.Diff(solid(2, 2, 7, 7, 7), got); diff != "" {
		t.Errorf("batch 1 darken mismatch (-want +got):\n%s", diff)
	}
	if len(c.Reports()) != 1 {
		t.Errorf("got %d reports, wanted just batch 1", len(c.Reports()))
	}
}

func TestRunAllCancelled(t *testing.T) {
	f := newFixture(t)
	f.writeBatch(t, "0", map[string]imgio.PixelArray{"1.png": solid(1, 1, 0, 0, 0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.compositor(t, nil).RunAll(ctx, f.sourceDir); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBatchFilesNumericOrder(t *testing.T) {
	f := newFixture(t)
	f.writeBatch(t, "0", map[string]imgio.PixelArray{
		"10.png":  solid(1, 1, 0, 0, 0),
		"9.png":   solid(1, 1, 0, 0, 0),
		"100.png": solid(1, 1, 0, 0, 0),
	})

	c := f.compositor(t, nil)
	files, err := c.BatchFiles(filepath.Join(f.sourceDir, "0"))
	if err != nil {
		t.Fatal(err)
	}

	names := []string{}
	for _, file := range files {
		names = append(names, filepath.Base(file))
	}
	if diff := cmp.Diff([]string{"9.png", "10.png", "100.png"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
