package lstack

import (
	"fmt"

	"github.com/abworrall/lightstack/pkg/imgio"
)

// A SelectionIndexArray names, for every pixel, which stack member
// the composite takes that pixel from.
type SelectionIndexArray struct {
	H, W  int
	Index []int
}

func (sel SelectionIndexArray) At(y, x int) int { return sel.Index[y*sel.W+x] }

// Wins counts how many pixels each of the n stack members supplied.
func (sel SelectionIndexArray) Wins(n int) []int {
	wins := make([]int, n)
	for _, i := range sel.Index {
		wins[i]++
	}
	return wins
}

// Select reduces the brightness array over the stack axis. Member 0
// starts as the winner at every pixel, and a later member only takes
// over if the criterion says it is strictly better, so ties go to the
// earliest image.
func Select(b BrightnessArray, crit Criterion) SelectionIndexArray {
	sel := SelectionIndexArray{H: b.H(), W: b.W()}
	sel.Index = make([]int, sel.H*sel.W)

	for y := 0; y < sel.H; y++ {
		for x := 0; x < sel.W; x++ {
			best, bestVal := 0, b.Grids[0].Get(x, y)
			for n := 1; n < b.N(); n++ {
				if v := b.Grids[n].Get(x, y); crit(v, bestVal) {
					best, bestVal = n, v
				}
			}
			sel.Index[y*sel.W+x] = best
		}
	}

	return sel
}

// Gather builds an image by taking, at each pixel, every channel
// from the stack member the selection names. Channels at one pixel
// always come from the same image.
func Gather(s StackArray, sel SelectionIndexArray) (imgio.PixelArray, error) {
	if sel.H != s.H || sel.W != s.W {
		return imgio.PixelArray{}, ShapeMismatchError{Index: 0,
			Want: fmt.Sprintf("(%dx%d)", s.H, s.W), Got: fmt.Sprintf("selection (%dx%d)", sel.H, sel.W)}
	}

	out := imgio.NewPixelArray(s.H, s.W, s.Depth)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			n := sel.At(y, x)
			if n < 0 || n >= s.N {
				return imgio.PixelArray{}, fmt.Errorf("selection at (%d,%d) names image %d, stack has %d", x, y, n, s.N)
			}
			src := s.Offset(n, y, x)
			copy(out.Pix[out.Offset(y, x):out.Offset(y, x)+s.C], s.Pix[src:src+s.C])
		}
	}

	return out, nil
}

// Composite runs the two stages: pick a member per pixel, then gather.
func Composite(s StackArray, crit Criterion) (imgio.PixelArray, SelectionIndexArray, error) {
	sel := Select(s.Brightness(), crit)
	out, err := Gather(s, sel)
	return out, sel, err
}

// CompositeStack builds the lighten and darken composites of a batch
// of images.
func CompositeStack(images []imgio.PixelArray) (lightened, darkened imgio.PixelArray, err error) {
	s, err := NewStackArray(images)
	if err != nil {
		return imgio.PixelArray{}, imgio.PixelArray{}, err
	}

	b := s.Brightness()

	if lightened, err = Gather(s, Select(b, Brightest)); err != nil {
		return imgio.PixelArray{}, imgio.PixelArray{}, err
	}
	if darkened, err = Gather(s, Select(b, Darkest)); err != nil {
		return imgio.PixelArray{}, imgio.PixelArray{}, err
	}

	return lightened, darkened, nil
}
