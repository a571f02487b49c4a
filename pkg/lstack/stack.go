package lstack

import (
	"fmt"

	"github.com/abworrall/lightstack/pkg/emath"
	"github.com/abworrall/lightstack/pkg/imgio"
)

// A StackArray is N same-shaped images stacked along a new leading
// axis: N x H x W x C samples, with C varying fastest. It is built
// fresh for each batch, and nothing writes to it after that.
type StackArray struct {
	N, H, W, C int
	Depth      int
	Pix        []uint16
}

// NewStackArray copies the images into a single stack. Every image
// must have the same height, width, channel count and bit depth as
// the first one.
func NewStackArray(images []imgio.PixelArray) (StackArray, error) {
	if len(images) == 0 {
		return StackArray{}, ShapeMismatchError{Index: -1}
	}

	first := images[0].Shape()
	for i := 1; i < len(images); i++ {
		if shape := images[i].Shape(); shape != first {
			return StackArray{}, ShapeMismatchError{Index: i, Want: first.String(), Got: shape.String()}
		}
	}

	s := StackArray{
		N:     len(images),
		H:     first.H,
		W:     first.W,
		C:     first.C,
		Depth: first.Depth,
	}

	memberSize := s.H * s.W * s.C
	s.Pix = make([]uint16, s.N*memberSize)
	for i, img := range images {
		if len(img.Pix) != memberSize {
			return StackArray{}, ShapeMismatchError{Index: i, Want: first.String(),
				Got: fmt.Sprintf("%s with %d samples", img.Shape(), len(img.Pix))}
		}
		copy(s.Pix[i*memberSize:], img.Pix)
	}

	return s, nil
}

func (s StackArray) String() string {
	return fmt.Sprintf("StackArray(%dx%dx%dx%d, %d-bit)", s.N, s.H, s.W, s.C, s.Depth)
}

func (s StackArray) Offset(n, y, x int) int { return ((n*s.H+y)*s.W + x) * s.C }
func (s StackArray) NumBytes() uint64 { return uint64(len(s.Pix)) * 2 }

// A BrightnessArray holds one W x H grid per stack member; each cell
// is the mean of that pixel's channel samples.
type BrightnessArray struct {
	Grids []emath.FloatGrid
}

func (b BrightnessArray) N() int { return len(b.Grids) }
func (b BrightnessArray) W() int {
	if len(b.Grids) == 0 {
		return 0
	}
	return b.Grids[0].Dx()
}
func (b BrightnessArray) H() int {
	if len(b.Grids) == 0 {
		return 0
	}
	return b.Grids[0].Dy()
}

// Brightness averages over the channel axis. It's a mean rather than
// a sum so the values stay in sample units, whatever C is.
func (s StackArray) Brightness() BrightnessArray {
	b := BrightnessArray{Grids: make([]emath.FloatGrid, s.N)}

	for n := 0; n < s.N; n++ {
		g := emath.NewFloatGrid(s.W, s.H)
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				o := s.Offset(n, y, x)
				tot := 0
				for c := 0; c < s.C; c++ {
					tot += int(s.Pix[o+c])
				}
				g.Set(x, y, float64(tot)/float64(s.C))
			}
		}
		b.Grids[n] = g
	}

	return b
}
