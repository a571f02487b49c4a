package lstack

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abworrall/lightstack/pkg/batch"
	"github.com/abworrall/lightstack/pkg/elog"
	"github.com/abworrall/lightstack/pkg/imgio"
)

// A Compositor turns batch folders into lighten/darken composites,
// writing everything into a single Run.
type Compositor struct {
	Config
	Run Run
	Log *zap.SugaredLogger

	mu      sync.Mutex
	reports []BatchReport
}

func NewCompositor(cfg Config, run Run, log *zap.SugaredLogger) *Compositor {
	if log == nil {
		log = elog.Nop()
	}
	return &Compositor{
		Config: cfg,
		Run:    run,
		Log:    log,
	}
}

// Reports returns what has been recorded about the batches processed so far.
func (c *Compositor) Reports() []BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BatchReport, len(c.reports))
	copy(out, c.reports)
	return out
}

// BatchDirs lists the batch folders in sourceDir: every immediate
// sub-directory counts, whatever its name.
func BatchDirs(sourceDir string) ([]string, error) {
	contents, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, "readdir '%s'", sourceDir)
	}

	dirs := []string{}
	for _, content := range contents {
		if content.IsDir() {
			dirs = append(dirs, filepath.Join(sourceDir, content.Name()))
		}
	}
	if len(dirs) == 0 {
		return nil, NoBatchesError{Dir: sourceDir}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// BatchFiles lists the images in a batch folder. If every name is
// numeric they come back in numeric order, so on a tie the earliest
// exposure wins; otherwise they're in name order.
func (c *Compositor) BatchFiles(batchDir string) ([]string, error) {
	handles, err := batch.List(batchDir, c.Ext)
	if err != nil {
		return nil, err
	}

	if ordered, err := batch.Order(handles); err == nil {
		handles = ordered
	} else {
		sort.Slice(handles, func(i, j int) bool { return handles[i].Path < handles[j].Path })
	}

	files := []string{}
	for _, h := range handles {
		files = append(files, h.Path)
	}
	return files, nil
}

// ProcessBatch loads the images in batchDir, and writes one composite
// per Mode into the run folder, named after the batch folder.
func (c *Compositor) ProcessBatch(ctx context.Context, batchDir string) (BatchReport, error) {
	name := filepath.Base(batchDir)
	report := BatchReport{Name: name}

	files, err := c.BatchFiles(batchDir)
	if err != nil {
		return report, errors.Wrapf(err, "batch '%s'", name)
	}

	images := []imgio.PixelArray{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		img, err := imgio.Load(f)
		if err != nil {
			return report, errors.Wrapf(err, "batch '%s'", name)
		}
		images = append(images, img)
		report.Members = append(report.Members, filepath.Base(f))
	}

	s, err := NewStackArray(images)
	if err != nil {
		return report, errors.Wrapf(err, "batch '%s'", name)
	}
	images = nil // the stack has its own copy

	report.StackSize = humanize.Bytes(s.NumBytes())
	report.FirstCapture, report.LastCapture = captureRange(files)
	c.Log.Infof("Batch %s: %s, %s resident", name, s, report.StackSize)

	b := s.Brightness()
	report.MemberBrightnessMean, report.MemberBrightnessStdDev = memberBrightness(b)
	for i, f := range files {
		c.Log.Debugf("Batch %s: %s brightness %s", name, filepath.Base(f), b.Grids[i].Summary())
	}

	for _, m := range Modes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sel := Select(b, m.Criterion)
		out, err := Gather(s, sel)
		if err != nil {
			return report, errors.Wrapf(err, "batch '%s' %s", name, m.Name)
		}

		path := c.Run.OutputPath(m, name, c.Ext)
		if err := imgio.Write(out, path); err != nil {
			return report, errors.Wrapf(err, "batch '%s' %s", name, m.Name)
		}
		c.Log.Debugf("Batch %s: %s written to %s", name, m.Name, path)

		report.Composites = append(report.Composites, newCompositeStats(m, path, out, sel, s.N))

		if c.DumpSelectionMaps {
			mapPath := c.Run.SelectionMapPath(m, name)
			if err := WriteSelectionMap(mapPath, "batch "+name+" "+m.Name, b, sel); err != nil {
				return report, errors.Wrapf(err, "batch '%s' %s selection map", name, m.Name)
			}
		}
	}

	return report, nil
}

func (c *Compositor) processAndRecord(ctx context.Context, batchDir string) error {
	report, err := c.ProcessBatch(ctx, batchDir)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.reports = append(c.reports, report)
	c.mu.Unlock()
	return nil
}

// RunAll composites every batch folder in sourceDir. Up to
// Parallelism batches run at once. By default the first failure stops
// the run: batches not yet started are skipped, and the ones already
// running are cancelled. With ContinueOnError every batch is attempted,
// and the failures are returned together.
func (c *Compositor) RunAll(ctx context.Context, sourceDir string) error {
	started := time.Now()

	dirs, err := BatchDirs(sourceDir)
	if err != nil {
		return err
	}

	c.Log.Infof("Compositing %d batches from %s into %s (%d at a time)", len(dirs), sourceDir, c.Run.Dir, c.Parallelism)

	if c.ContinueOnError {
		err = c.runKeepGoing(ctx, dirs)
	} else {
		err = c.runStopOnError(ctx, dirs)
	}
	if err != nil {
		return err
	}

	if c.WriteManifest {
		m := Manifest{
			Run:      c.Run.Number,
			Started:  started.Format(time.RFC3339),
			Finished: time.Now().Format(time.RFC3339),
			Config:   c.Config,
			Batches:  c.Reports(),
		}
		if err := m.Write(filepath.Join(c.Run.Dir, ManifestFilename)); err != nil {
			return err
		}
	}

	c.Log.Infof("Run %s done: %d batches in %s", c.Run, len(dirs), time.Since(started).Round(time.Millisecond))
	return nil
}

func (c *Compositor) runStopOnError(ctx context.Context, dirs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Parallelism)

	for _, dir := range dirs {
		dir := dir
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.processAndRecord(gctx, dir)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Compositor) runKeepGoing(ctx context.Context, dirs []string) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(c.Parallelism)

	for _, dir := range dirs {
		dir := dir
		g.Go(func() error {
			if err := c.processAndRecord(ctx, dir); err != nil {
				c.Log.Errorf("%v (carrying on)", err)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	g.Wait()
	if errs == nil {
		errs = ctx.Err()
	}
	return errs
}
