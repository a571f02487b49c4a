package lstack

import "fmt"

// ShapeMismatchError means the images in a batch can't be stacked.
type ShapeMismatchError struct {
	Index int // Which image disagreed with image 0; -1 for an empty stack
	Want  string
	Got   string
}

func (e ShapeMismatchError) Error() string {
	if e.Index < 0 {
		return "can't composite an empty stack"
	}
	return fmt.Sprintf("image %d is %s, but image 0 is %s", e.Index, e.Got, e.Want)
}

// NoBatchesError means the source dir had no batch folders in it.
type NoBatchesError struct {
	Dir string
}

func (e NoBatchesError) Error() string {
	return fmt.Sprintf("no batch folders found in %s; you may need to run the batcher first", e.Dir)
}
