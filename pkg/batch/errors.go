package batch

import "fmt"

// NoInputError means the source dir had no files with the wanted extension.
type NoInputError struct {
	Dir string
	Ext string
}

func (e NoInputError) Error() string {
	return fmt.Sprintf("no '%s' images found in %s", e.Ext, e.Dir)
}

// UnevenBatchError means the images can't be split into equal batches.
type UnevenBatchError struct {
	Count     int
	BatchSize int
}

func (e UnevenBatchError) Error() string {
	return fmt.Sprintf("number of photos (%d) does not split evenly into batches of %d", e.Count, e.BatchSize)
}

// MalformedNameError means a filename stem isn't an integer, so we can't order it.
type MalformedNameError struct {
	Path string
}

func (e MalformedNameError) Error() string {
	return fmt.Sprintf("filename '%s' is not <integer>.<ext>", e.Path)
}

// DestinationNotEmptyError means a previous partition left folders behind.
type DestinationNotEmptyError struct {
	Dir    string
	Subdir string
}

func (e DestinationNotEmptyError) Error() string {
	return fmt.Sprintf("%s is not empty (found '%s'); please empty the folder and re-run", e.Dir, e.Subdir)
}

type InvalidBatchSizeError struct {
	BatchSize int
}

func (e InvalidBatchSizeError) Error() string {
	return fmt.Sprintf("batch size must be a positive integer, got %d", e.BatchSize)
}
