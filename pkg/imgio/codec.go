package imgio

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// A Codec reads and writes one on-disk image format.
type Codec struct {
	Name   string
	Decode func(io.Reader) (PixelArray, error)
	Encode func(io.Writer, PixelArray) error
}

var (
	JPEGQuality = 95

	codecs = map[string]Codec{
		".png":  {"png", decodeWith(png.Decode), encodePNG},
		".jpg":  {"jpeg", decodeWith(jpeg.Decode), encodeJPEG},
		".jpeg": {"jpeg", decodeWith(jpeg.Decode), encodeJPEG},
		".tif":  {"tiff", decodeWith(tiff.Decode), encodeTIFF},
		".tiff": {"tiff", decodeWith(tiff.Decode), encodeTIFF},
		".bmp":  {"bmp", decodeWith(bmp.Decode), encodeBMP},
		".hdr":  {"rgbe", decodeRGBE, encodeRGBE},
	}
)

// CodecFor picks a codec by file extension (".png", "png", ".TIF" all work).
func CodecFor(ext string) (Codec, error) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if c, exists := codecs[ext]; exists {
		return c, nil
	}
	return Codec{}, errors.Errorf("no image codec for extension '%s'", ext)
}

// Supported returns true if we know how to read and write files with this extension.
func Supported(ext string) bool {
	_, err := CodecFor(ext)
	return err == nil
}

func Load(filename string) (PixelArray, error) {
	codec, err := CodecFor(filepath.Ext(filename))
	if err != nil {
		return PixelArray{}, errors.Wrapf(err, "load '%s'", filename)
	}

	reader, err := os.Open(filename)
	if err != nil {
		return PixelArray{}, errors.Wrapf(err, "open+r '%s'", filename)
	}
	defer reader.Close()

	pa, err := codec.Decode(reader)
	if err != nil {
		return PixelArray{}, errors.Wrapf(err, "%s decoding '%s'", codec.Name, filename)
	}
	return pa, nil
}

// Write encodes the array into filename, picking the format from its extension.
func Write(pa PixelArray, filename string) error {
	codec, err := CodecFor(filepath.Ext(filename))
	if err != nil {
		return errors.Wrapf(err, "write '%s'", filename)
	}

	writer, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "open+w '%s'", filename)
	}

	if err := codec.Encode(writer, pa); err != nil {
		writer.Close()
		return errors.Wrapf(err, "%s encoding '%s'", codec.Name, filename)
	}
	return errors.Wrapf(writer.Close(), "close '%s'", filename)
}

func decodeWith(decode func(io.Reader) (image.Image, error)) func(io.Reader) (PixelArray, error) {
	return func(r io.Reader) (PixelArray, error) {
		img, err := decode(r)
		if err != nil {
			return PixelArray{}, err
		}
		return FromImage(img), nil
	}
}

func encodePNG(w io.Writer, pa PixelArray) error { return png.Encode(w, pa.ToImage()) }
func encodeBMP(w io.Writer, pa PixelArray) error { return bmp.Encode(w, pa.ToImage()) }
func encodeTIFF(w io.Writer, pa PixelArray) error { return tiff.Encode(w, pa.ToImage(), nil) }

func encodeJPEG(w io.Writer, pa PixelArray) error {
	return jpeg.Encode(w, pa.ToImage(), &jpeg.Options{Quality: JPEGQuality})
}

func decodeRGBE(r io.Reader) (PixelArray, error) {
	img, err := rgbe.Decode(r)
	if err != nil {
		return PixelArray{}, err
	}
	return FromHDRImage(img), nil
}

func encodeRGBE(w io.Writer, pa PixelArray) error {
	return rgbe.Encode(w, HDRView{pa})
}
