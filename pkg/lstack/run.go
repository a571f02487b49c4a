package lstack

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockFilename = ".lightstack.lock"

var runDirRegexp = regexp.MustCompile(`^run_(\d+)$`)

// A Run is one invocation of the compositor. Its number is picked
// once, up front, and everything written during the run goes under Dir.
type Run struct {
	Number int
	Dir    string
}

func (r Run) String() string { return fmt.Sprintf("run_%d", r.Number) }

// OutputPath is where a batch's composite for the given mode is written.
func (r Run) OutputPath(m Mode, batchName, ext string) string {
	return filepath.Join(r.Dir, m.Folder, batchName+ext)
}

// NextRunNumber looks for entries named run_<N> in resultsDir, and
// returns one more than the largest N (or 1 if there are none).
func NextRunNumber(resultsDir string) (int, error) {
	contents, err := os.ReadDir(resultsDir)
	if os.IsNotExist(err) {
		return 1, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "readdir '%s'", resultsDir)
	}

	max := 0
	for _, content := range contents {
		m := runDirRegexp.FindStringSubmatch(content.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}

	return max + 1, nil
}

// AllocateRun picks the next run number and creates the run's folders
// (with one sub-folder per Mode). It holds a lock on resultsDir while
// doing so, so two compositors started at once get different runs.
func AllocateRun(resultsDir string) (Run, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return Run{}, errors.Wrapf(err, "mkdir '%s'", resultsDir)
	}

	lock := flock.New(filepath.Join(resultsDir, lockFilename))
	if err := lock.Lock(); err != nil {
		return Run{}, errors.Wrapf(err, "lock '%s'", resultsDir)
	}
	defer lock.Unlock()

	n, err := NextRunNumber(resultsDir)
	if err != nil {
		return Run{}, err
	}

	r := Run{Number: n}
	r.Dir = filepath.Join(resultsDir, r.String())

	if err := os.Mkdir(r.Dir, 0755); err != nil {
		return Run{}, errors.Wrapf(err, "mkdir '%s'", r.Dir)
	}
	for _, m := range Modes {
		dir := filepath.Join(r.Dir, m.Folder)
		if err := os.Mkdir(dir, 0755); err != nil {
			return Run{}, errors.Wrapf(err, "mkdir '%s'", dir)
		}
	}

	return r, nil
}
