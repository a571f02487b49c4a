package batch

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/abworrall/lightstack/pkg/elog"
)

// An ImageHandle is a numbered source image: "42.png" has Key "42" and Ordinal 42.
type ImageHandle struct {
	Key     string
	Ordinal int
	Path    string
}

func (h ImageHandle) Filename() string { return filepath.Base(h.Path) }

// A Batch is a run of consecutively numbered images; batch i ends up in folder "<i>".
type Batch struct {
	Index   int
	Members []ImageHandle
}

func (b Batch) Name() string { return strconv.Itoa(b.Index) }

type Config struct {
	SourceDir string
	DestDir   string
	BatchSize int
	Ext       string // including the dot, e.g. ".png"

	Log *zap.SugaredLogger
}

// Partition splits the numbered images in SourceDir into batches of
// BatchSize, and copies each batch into its own numbered folder under
// DestDir. All the checks happen before anything is written, so a
// failed partition leaves DestDir as it found it.
func Partition(cfg Config) ([]Batch, error) {
	log := cfg.Log
	if log == nil {
		log = elog.Nop()
	}

	if cfg.BatchSize <= 0 {
		return nil, InvalidBatchSizeError{cfg.BatchSize}
	}

	if err := CheckDestination(cfg.DestDir); err != nil {
		return nil, err
	}

	handles, err := List(cfg.SourceDir, cfg.Ext)
	if err != nil {
		return nil, err
	} else if len(handles) == 0 {
		return nil, NoInputError{Dir: cfg.SourceDir, Ext: cfg.Ext}
	} else if len(handles)%cfg.BatchSize != 0 {
		return nil, UnevenBatchError{Count: len(handles), BatchSize: cfg.BatchSize}
	}

	if handles, err = Order(handles); err != nil {
		return nil, err
	}

	batches, err := Plan(handles, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	log.Infof("Partitioning %d images from %s into %d batches of %d", len(handles), cfg.SourceDir, len(batches), cfg.BatchSize)

	if err := os.MkdirAll(cfg.DestDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "mkdir '%s'", cfg.DestDir)
	}

	for _, b := range batches {
		dir := filepath.Join(cfg.DestDir, b.Name())
		if err := os.Mkdir(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "mkdir '%s'", dir)
		}

		for _, h := range b.Members {
			if err := CopyFile(h.Path, filepath.Join(dir, h.Filename())); err != nil {
				return nil, err
			}
		}

		log.Debugf("batch %s: %s .. %s", b.Name(), b.Members[0].Filename(), b.Members[len(b.Members)-1].Filename())
	}

	return batches, nil
}

// CheckDestination fails if dir already has sub-directories in it. A
// dir that doesn't exist yet is fine.
func CheckDestination(dir string) error {
	contents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "readdir '%s'", dir)
	}

	for _, content := range contents {
		if content.IsDir() {
			return DestinationNotEmptyError{Dir: dir, Subdir: content.Name()}
		}
	}
	return nil
}

// List finds the regular files in dir whose names end in ext, and
// strips the ext off to get their keys. The result is in directory
// order; the keys haven't been parsed yet.
func List(dir, ext string) ([]ImageHandle, error) {
	contents, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "readdir '%s'", dir)
	}

	handles := []ImageHandle{}
	for _, content := range contents {
		name := content.Name()
		if content.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		handles = append(handles, ImageHandle{
			Key:  strings.TrimSuffix(name, ext),
			Path: filepath.Join(dir, name),
		})
	}

	return handles, nil
}

// Order parses each key as an integer, and returns the handles in
// ascending numeric order ("9" before "10"). Keys with the same value
// ("7" and "007") are ordered by their text, so the result never
// depends on the order the directory listing came back in.
func Order(in []ImageHandle) ([]ImageHandle, error) {
	out := make([]ImageHandle, len(in))
	copy(out, in)

	for i := range out {
		n, err := strconv.Atoi(out[i].Key)
		if err != nil {
			return nil, MalformedNameError{Path: out[i].Path}
		}
		out[i].Ordinal = n
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ordinal != out[j].Ordinal {
			return out[i].Ordinal < out[j].Ordinal
		}
		return out[i].Key < out[j].Key
	})

	return out, nil
}

// Plan chops ordered handles into consecutive batches of exactly size members.
func Plan(handles []ImageHandle, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, InvalidBatchSizeError{size}
	} else if len(handles)%size != 0 {
		return nil, UnevenBatchError{Count: len(handles), BatchSize: size}
	}

	batches := []Batch{}
	for i := 0; i < len(handles); i += size {
		batches = append(batches, Batch{
			Index:   len(batches),
			Members: handles[i : i+size],
		})
	}
	return batches, nil
}

// CopyFile copies src to dst, keeping src's permission bits. src is left alone.
func CopyFile(src, dst string) error {
	reader, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open+r '%s'", src)
	}
	defer reader.Close()

	info, err := reader.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat '%s'", src)
	}

	writer, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "open+w '%s'", dst)
	}

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return errors.Wrapf(err, "copy '%s' -> '%s'", src, dst)
	}
	return errors.Wrapf(writer.Close(), "close '%s'", dst)
}
