package lstack

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/lightstack/pkg/emath"
)

// MemberColor gives each stack member its own hue.
func MemberColor(i, n int, norm float64) color.Color {
	hue := 360.0 * float64(i) / float64(n)
	return colorful.Hsv(hue, 0.7, 0.25+0.75*norm).Clamped()
}

// SelectionMapPath is where the selection map for a batch/mode goes. It
// sits in the run folder itself, not in the per-mode sub-folders.
func (r Run) SelectionMapPath(m Mode, batchName string) string {
	return filepath.Join(r.Dir, fmt.Sprintf("selection-%s-%s.png", m.Name, batchName))
}

// WriteSelectionMap paints each pixel in the color of the member it
// was taken from, shaded by how bright the winning pixel was.
func WriteSelectionMap(filename, title string, b BrightnessArray, sel SelectionIndexArray) error {
	g := emath.NewFloatGrid(sel.W, sel.H)
	for y := 0; y < sel.H; y++ {
		for x := 0; x < sel.W; x++ {
			g.Set(x, y, b.Grids[sel.At(y, x)].Get(x, y))
		}
	}

	colorer := func(x, y int, norm float64) color.Color {
		return MemberColor(sel.At(y, x), b.N(), norm)
	}

	return g.ToImg(title, filename, colorer)
}
