package lstack

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManifestBatchOrder(t *testing.T) {
	tests := []struct {
		name  string
		batch []string
		want  []string
	}{
		{"numeric", []string{"10", "2", "1", "02"}, []string{"1", "02", "2", "10"}},
		{"mixed falls back to names", []string{"b", "10", "a", "2"}, []string{"10", "2", "a", "b"}},
		{"empty", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Manifest{Run: 3}
			for _, name := range tc.batch {
				m.Batches = append(m.Batches, BatchReport{Name: name, Members: []string{name + ".png"}})
			}

			filename := filepath.Join(t.TempDir(), ManifestFilename)
			if err := m.Write(filename); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := LoadManifest(filename)
			if err != nil {
				t.Fatalf("LoadManifest: %v", err)
			}

			var names []string
			for _, b := range got.Batches {
				names = append(names, b.Name)
				if diff := cmp.Diff([]string{b.Name + ".png"}, b.Members); diff != "" {
					t.Errorf("batch %s members got separated from it (-want +got):\n%s", b.Name, diff)
				}
			}
			if diff := cmp.Diff(tc.want, names); diff != "" {
				t.Errorf("batch order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
