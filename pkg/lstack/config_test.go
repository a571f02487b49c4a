package lstack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewConfigFromYaml(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(*Config)
		wantErr bool
	}{
		{"empty gets defaults", "", func(c *Config) {}, false},
		{"ext without dot", "ext: tif\n", func(c *Config) { c.Ext = ".tif" }, false},
		{"parallelism floor", "parallelism: -3\n", func(c *Config) { c.Parallelism = 1 }, false},
		{
			name: "everything",
			yaml: "verbosity: 1\next: .jpg\nrawdir: in\nsourcedir: batches\nresultsdir: out\n" +
				"parallelism: 4\ncontinueonerror: true\ndumpselectionmaps: true\nwritemanifest: false\n",
			want: func(c *Config) {
				*c = Config{1, ".jpg", "in", "batches", "out", 4, true, true, false}
			},
		},
		{"unknown ext", "ext: .gif\n", nil, true},
		{"not yaml", "ext: [", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfigFromYaml([]byte(tc.yaml))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConfigFromYaml: %v", err)
			}

			want := NewConfig()
			tc.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, DefaultConfigFilename)

	c, err := LoadConfig(missing, false)
	if err != nil {
		t.Fatalf("missing optional config: %v", err)
	}
	if diff := cmp.Diff(NewConfig(), c); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadConfig(missing, true); err == nil {
		t.Errorf("expected an error for a missing required config")
	}

	if err := os.WriteFile(missing, []byte("resultsdir: elsewhere\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if c, err := LoadConfig(missing, true); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	} else if c.ResultsDir != "elsewhere" || c.Ext != ".png" {
		t.Errorf("got %+v", c)
	}

	// Round trips through its own yaml, as written into the manifest.
	c.Parallelism = 3
	again, err := NewConfigFromYaml([]byte(c.AsYaml()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c, again); diff != "" {
		t.Errorf("AsYaml round trip (-want +got):\n%s", diff)
	}
}
