package lstack

import (
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/lightstack/pkg/imgio"
)

const ManifestFilename = "manifest.yaml"

// CompositeStats describes one composite. Brightness values are in sample units.
type CompositeStats struct {
	Mode             string
	Output           string
	MinBrightness    int64
	MedianBrightness int64
	P99Brightness    int64
	MaxBrightness    int64
	Wins             []int `yaml:",flow"` // How many pixels came from each member
}

// A BatchReport is what the manifest records about one batch.
type BatchReport struct {
	Name         string
	Members      []string
	FirstCapture string `yaml:",omitempty"`
	LastCapture  string `yaml:",omitempty"`
	StackSize    string

	MemberBrightnessMean   float64
	MemberBrightnessStdDev float64

	Composites []CompositeStats
}

type Manifest struct {
	Run      int
	Started  string
	Finished string
	Config   Config
	Batches  []BatchReport
}

func newCompositeStats(m Mode, output string, pa imgio.PixelArray, sel SelectionIndexArray, n int) CompositeStats {
	cs := CompositeStats{
		Mode:   m.Name,
		Output: output,
		Wins:   sel.Wins(n),
	}

	h := hdrhistogram.New(1, int64(pa.MaxValue())+1, 3)
	for y := 0; y < pa.H; y++ {
		for x := 0; x < pa.W; x++ {
			tot := 0
			for _, v := range pa.RGB(y, x) {
				tot += int(v)
			}
			h.RecordValue(int64(math.Round(float64(tot) / float64(pa.C))))
		}
	}

	if h.TotalCount() > 0 {
		cs.MinBrightness = h.Min()
		cs.MedianBrightness = h.ValueAtQuantile(50)
		cs.P99Brightness = h.ValueAtQuantile(99)
		cs.MaxBrightness = h.Max()
	}
	return cs
}

// memberBrightness returns the mean and stddev, across the stack, of
// each member's mean brightness. A big stddev usually means the light
// changed a lot during the batch.
func memberBrightness(b BrightnessArray) (float64, float64) {
	means := make([]float64, b.N())
	for i := range b.Grids {
		means[i] = b.Grids[i].Mean()
	}
	if len(means) < 2 {
		return stat.Mean(means, nil), 0.0
	}
	return stat.MeanStdDev(means, nil)
}

// captureRange finds the earliest and latest EXIF capture times among
// the files. Files without EXIF are skipped.
func captureRange(files []string) (string, string) {
	times := []time.Time{}
	for _, f := range files {
		if t, err := imgio.CaptureTime(f); err == nil {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		return "", ""
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times[0].Format(time.RFC3339), times[len(times)-1].Format(time.RFC3339)
}

// sortReports puts batches in numeric order ("2" before "10") when
// every name is an integer, and in name order otherwise.
func sortReports(reports []BatchReport) {
	nums := make([]int, len(reports))
	numeric := true
	for i, r := range reports {
		n, err := strconv.Atoi(r.Name)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = n
	}

	idx := make([]int, len(reports))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if numeric && nums[a] != nums[b] {
			return nums[a] < nums[b]
		}
		return reports[a].Name < reports[b].Name
	})

	sorted := make([]BatchReport, len(reports))
	for i, from := range idx {
		sorted[i] = reports[from]
	}
	copy(reports, sorted)
}

func (m Manifest) Write(filename string) error {
	sortReports(m.Batches)

	b, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	return errors.Wrapf(os.WriteFile(filename, b, 0644), "write '%s'", filename)
}

func LoadManifest(filename string) (Manifest, error) {
	m := Manifest{}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return m, errors.Wrapf(err, "read '%s'", filename)
	}
	return m, errors.Wrapf(yaml.Unmarshal(contents, &m), "parse '%s'", filename)
}
