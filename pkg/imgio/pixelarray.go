package imgio

import (
	"fmt"
	"image"
	"image/color"
)

// NumChannels is fixed; alpha is dropped on load, and gray is replicated.
const NumChannels = 3

// A PixelArray is a dense H x W x C array of samples, row-major, with
// the channel index varying fastest. Samples live in [0, MaxValue()],
// where the bit depth is whatever the source image had (8 or 16 for
// the codecs we know about). Once built, nobody writes to Pix.
type PixelArray struct {
	H, W, C int
	Depth   int
	Pix     []uint16
}

// A Shape is everything that has to match for two arrays to be stacked.
type Shape struct {
	H, W, C int
	Depth   int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%dx%dx%d, %d-bit)", s.H, s.W, s.C, s.Depth)
}

func NewPixelArray(h, w, depth int) PixelArray {
	return PixelArray{
		H:     h,
		W:     w,
		C:     NumChannels,
		Depth: depth,
		Pix:   make([]uint16, h*w*NumChannels),
	}
}

func (pa PixelArray) Shape() Shape { return Shape{pa.H, pa.W, pa.C, pa.Depth} }
func (pa PixelArray) Offset(y, x int) int { return (y*pa.W + x) * pa.C }
func (pa PixelArray) MaxValue() uint16 { return uint16(1<<uint(pa.Depth) - 1) }
func (pa PixelArray) NumBytes() uint64 { return uint64(len(pa.Pix)) * 2 }

// RGB returns the C samples at (y,x). The slice aliases Pix; don't write to it.
func (pa PixelArray) RGB(y, x int) []uint16 {
	o := pa.Offset(y, x)
	return pa.Pix[o : o+pa.C]
}

func (pa PixelArray) Clone() PixelArray {
	out := pa
	out.Pix = make([]uint16, len(pa.Pix))
	copy(out.Pix, pa.Pix)
	return out
}

func (pa PixelArray) String() string {
	return fmt.Sprintf("PixelArray%s", pa.Shape())
}

// FromImage samples an image.Image into a PixelArray. 16-bit image
// types keep 16 bits per sample; everything else comes out as 8-bit.
// Samples are taken non-premultiplied, then alpha is discarded.
func FromImage(img image.Image) PixelArray {
	b := img.Bounds()

	switch src := img.(type) {
	case *image.NRGBA:
		pa := NewPixelArray(b.Dy(), b.Dx(), 8)
		for y := 0; y < pa.H; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < pa.W; x++ {
				o := pa.Offset(y, x)
				pa.Pix[o+0] = uint16(row[4*x+0])
				pa.Pix[o+1] = uint16(row[4*x+1])
				pa.Pix[o+2] = uint16(row[4*x+2])
			}
		}
		return pa

	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		pa := NewPixelArray(b.Dy(), b.Dx(), 16)
		for y := 0; y < pa.H; y++ {
			for x := 0; x < pa.W; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				o := pa.Offset(y, x)
				pa.Pix[o+0], pa.Pix[o+1], pa.Pix[o+2] = c.R, c.G, c.B
			}
		}
		return pa
	}

	pa := NewPixelArray(b.Dy(), b.Dx(), 8)
	for y := 0; y < pa.H; y++ {
		for x := 0; x < pa.W; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := pa.Offset(y, x)
			pa.Pix[o+0], pa.Pix[o+1], pa.Pix[o+2] = uint16(c.R), uint16(c.G), uint16(c.B)
		}
	}
	return pa
}

// ToImage builds an opaque image.Image from the array: image.NRGBA for
// 8-bit arrays, image.NRGBA64 (with samples rescaled to 16 bits) for
// any other depth.
func (pa PixelArray) ToImage() image.Image {
	bounds := image.Rect(0, 0, pa.W, pa.H)

	if pa.Depth == 8 {
		img := image.NewNRGBA(bounds)
		for y := 0; y < pa.H; y++ {
			for x := 0; x < pa.W; x++ {
				rgb := pa.RGB(y, x)
				img.SetNRGBA(x, y, color.NRGBA{uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2]), 0xFF})
			}
		}
		return img
	}

	max := uint32(pa.MaxValue())
	scale := func(v uint16) uint16 { return uint16(uint32(v) * 0xFFFF / max) }

	img := image.NewNRGBA64(bounds)
	for y := 0; y < pa.H; y++ {
		for x := 0; x < pa.W; x++ {
			rgb := pa.RGB(y, x)
			img.SetNRGBA64(x, y, color.NRGBA64{scale(rgb[0]), scale(rgb[1]), scale(rgb[2]), 0xFFFF})
		}
	}
	return img
}
