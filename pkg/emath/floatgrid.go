package emath

import (
	"fmt"
	"math"
)

// A FloatGrid is a w x h grid of floats, stored row by row.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (fg *FloatGrid) Set(x, y int, v float64) { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64 { return fg.values[fg.stride*y+x] }
func (fg *FloatGrid) Dx() int { return fg.stride }

func (fg *FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid) Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values: make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

func (fg *FloatGrid) MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i := 0; i < len(fg.values); i++ {
		if fg.values[i] > max {
			max = fg.values[i]
		}
		if fg.values[i] < min {
			min = fg.values[i]
		}
	}
	return min, max
}

func (fg *FloatGrid) Mean() float64 {
	if len(fg.values) == 0 {
		return 0.0
	}
	tot := 0.0
	for _, v := range fg.values {
		tot += v
	}
	return tot / float64(len(fg.values))
}

// Summary is a one-line description of the grid, for debug logging.
func (fg *FloatGrid) Summary() string {
	if len(fg.values) == 0 {
		return fmt.Sprintf("%dx%d, empty", fg.Dx(), fg.Dy())
	}
	min, max := fg.MinMax()
	return fmt.Sprintf("%dx%d, min %.1f, mean %.1f, max %.1f", fg.Dx(), fg.Dy(), min, fg.Mean(), max)
}
