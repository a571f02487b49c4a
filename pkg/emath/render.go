package emath

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// A Colorer picks the output color for grid cell (x,y), given its value
// normalized into [0.0, 1.0] across the whole grid.
type Colorer func(x, y int, norm float64) color.Color

// Gray is the plain grayscale Colorer.
func Gray(x, y int, norm float64) color.Color {
	v := uint16(norm * 65535.0)
	return color.RGBA64{v, v, v, 0xFFFF}
}

// ToImg saves the grid as a PNG, with a title drawn in the top left.
func (fg *FloatGrid) ToImg(title, filename string, colorer Colorer) error {
	min, max := fg.MinMax()
	span := max - min
	if span <= 0.0 {
		span = 1.0
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{fg.Dx(), fg.Dy()}})
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			img.Set(x, y, colorer(x, y, (fg.Get(x, y)-min)/span))
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
