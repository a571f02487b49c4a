package lstack

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/lightstack/pkg/imgio"
)

/* Example config file (lightstack.yaml, in the working directory) ...

verbosity: 0
ext: .png
rawdir: raw
sourcedir: source
resultsdir: results
parallelism: 4
continueonerror: false
dumpselectionmaps: true

*/

// DefaultConfigFilename is picked up from the working directory if it exists.
const DefaultConfigFilename = "lightstack.yaml"

type Config struct {
	Verbosity int

	Ext        string // Which files count as images; the composites are written in the same format
	RawDir     string // The flat folder of numbered photos
	SourceDir  string // Where the batch folders go
	ResultsDir string // Where the run_<N> folders go

	Parallelism       int  // How many batches to composite at once
	ContinueOnError   bool // If a batch fails, carry on with the others (the run still fails)
	DumpSelectionMaps bool // Write an image per composite showing which photo each pixel came from
	WriteManifest     bool
}

func NewConfig() Config {
	return Config{
		Ext:           ".png",
		RawDir:        "raw",
		SourceDir:     "source",
		ResultsDir:    "results",
		Parallelism:   1,
		WriteManifest: true,
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, errors.Wrap(err, "parse config yaml")
	}
	err := c.Finalize()
	return c, err
}

// LoadConfig reads a yaml config file. If the file is missing, and
// mustExist is false, you get the defaults.
func LoadConfig(filename string, mustExist bool) (Config, error) {
	contents, err := os.ReadFile(filename)
	if os.IsNotExist(err) && !mustExist {
		c := NewConfig()
		err := c.Finalize()
		return c, err
	} else if err != nil {
		return Config{}, errors.Wrapf(err, "config read '%s'", filename)
	}

	c, err := NewConfigFromYaml(contents)
	return c, errors.Wrapf(err, "config '%s'", filename)
}

// Finalize does sanity checks, and tidies up values set by hand.
func (c *Config) Finalize() error {
	if c.Ext == "" {
		c.Ext = ".png"
	}
	if !strings.HasPrefix(c.Ext, ".") {
		c.Ext = "." + c.Ext
	}
	if !imgio.Supported(c.Ext) {
		return errors.Errorf("no image codec for ext '%s'", c.Ext)
	}

	if c.Parallelism < 1 {
		c.Parallelism = 1
	}

	return nil
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "# can't marshal config yaml: " + err.Error()
	}
	return string(b)
}
