package imgio

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

// CaptureTime reads the capture timestamp from a file's EXIF block.
// Plenty of formats (PNG, BMP) never carry one, so callers should
// treat an error as "unknown", not as a failure.
func CaptureTime(filename string) (time.Time, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "open+r exif '%s'", filename)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "exif parsing '%s'", filename)
	}

	t, err := ex.DateTime()
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "exif DateTime '%s'", filename)
	}
	return t, nil
}
