package imgio

import (
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
)

// HDRView lets a PixelArray be handed to the Radiance RGBE encoder.
// Samples map linearly onto [0.0, 1.0]; no tone curve is applied.
type HDRView struct {
	PixelArray
}

// Implement image.Image
func (v HDRView) ColorModel() color.Model { return hdrcolor.RGBModel }
func (v HDRView) Bounds() image.Rectangle { return image.Rect(0, 0, v.W, v.H) }
func (v HDRView) At(x, y int) color.Color { return v.HDRAt(x, y) }

// Implement hdr.Image
func (v HDRView) Size() int { return v.W * v.H }
func (v HDRView) HDRAt(x, y int) hdrcolor.Color {
	rgb := v.RGB(y, x)
	max := float64(v.MaxValue())
	return hdrcolor.RGB{R: float64(rgb[0]) / max, G: float64(rgb[1]) / max, B: float64(rgb[2]) / max}
}

var _ hdr.Image = HDRView{}

// FromHDRImage quantizes an HDR image into 16-bit samples. Values
// outside [0.0, 1.0] are clipped.
func FromHDRImage(img image.Image) PixelArray {
	himg, ok := img.(hdr.Image)
	if !ok {
		return FromImage(img)
	}

	quantize := func(f float64) uint16 {
		f = math.Max(0.0, math.Min(1.0, f))
		return uint16(math.Round(f * 0xFFFF))
	}

	b := himg.Bounds()
	pa := NewPixelArray(b.Dy(), b.Dx(), 16)
	for y := 0; y < pa.H; y++ {
		for x := 0; x < pa.W; x++ {
			r, g, bl, _ := himg.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
			o := pa.Offset(y, x)
			pa.Pix[o+0], pa.Pix[o+1], pa.Pix[o+2] = quantize(r), quantize(g), quantize(bl)
		}
	}
	return pa
}
