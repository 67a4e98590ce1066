package polarAnalysis

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleTable() string {
	var sb strings.Builder
	sb.WriteString("Sample\tTNFa\tIL6\n")
	for _, group := range GroupOrder {
		for r := 1; r <= 5; r++ {
			fmt.Fprintf(&sb, "%s_%d\t%d.5\t%d.25\n", group, r, r, r)
		}
	}
	return sb.String()
}

func TestLoad(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "panel.txt")
	if err := os.WriteFile(path, []byte(sampleTable()), 0644); err != nil {
		t.Fatal(err)
	}

	var ds = NewDataset("panel", path, "", false)
	if err := ds.Load(); err != nil {
		t.Fatal(err)
	}

	if len(ds.Samples) != 40 {
		t.Errorf("samples = %d; want 40", len(ds.Samples))
	}
	if want := []string{"TNFa", "IL6"}; len(ds.Variables) != 2 || ds.Variables[0] != want[0] || ds.Variables[1] != want[1] {
		t.Errorf("variables = %v; want %v", ds.Variables, want)
	}
	for _, group := range GroupOrder {
		if len(ds.GroupSamples[group]) != 5 {
			t.Errorf("group %s has %d samples; want 5", group, len(ds.GroupSamples[group]))
		}
	}

	var first = ds.Samples[0]
	if first.Treatment != "M0_Vehicle" || first.Starting != "M0" || first.Exposure != "Vehicle" || first.Replicate != "1" {
		t.Errorf("first sample grouping = %+v", first)
	}
	if first.Values["TNFa"] != 1.5 || first.Values["IL6"] != 1.25 {
		t.Errorf("first sample values = %v", first.Values)
	}
}

func TestLoadGz(t *testing.T) {
	var buf bytes.Buffer
	var gw = gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(sampleTable())); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	var path = filepath.Join(t.TempDir(), "panel.txt.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	var ds = NewDataset("panel", path, "", false)
	if err := ds.Load(); err != nil {
		t.Fatal(err)
	}
	if len(ds.Samples) != 40 {
		t.Errorf("samples = %d; want 40", len(ds.Samples))
	}
}

func TestLoadErrors(t *testing.T) {
	var loadErr *DataLoadError

	// missing file
	var ds = NewDataset("missing", filepath.Join(t.TempDir(), "nope.txt"), "", false)
	if err := ds.Load(); !errors.As(err, &loadErr) {
		t.Errorf("missing file: err = %v; want DataLoadError", err)
	}

	// unknown treatment label
	var path = filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("Sample\tTNFa\nM3_Vehicle_1\t1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ds = NewDataset("bad", path, "", false)
	if err := ds.Load(); !errors.As(err, &loadErr) {
		t.Errorf("bad label: err = %v; want DataLoadError", err)
	}

	// non-numeric cell
	path = filepath.Join(t.TempDir(), "nonnum.txt")
	if err := os.WriteFile(path, []byte("Sample\tTNFa\nM0_Vehicle_1\tNA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ds = NewDataset("nonnum", path, "", false)
	if err := ds.Load(); !errors.As(err, &loadErr) {
		t.Errorf("non-numeric: err = %v; want DataLoadError", err)
	}
}

func TestParseSampleID(t *testing.T) {
	var cases = []struct {
		id        string
		treatment string
		replicate string
		ok        bool
	}{
		{"M0_Vehicle_1", "M0_Vehicle", "1", true},
		{"M0 -> M1+DEP_5", "M0 -> M1+DEP", "5", true},
		{"M2 -> M1_3", "M2 -> M1", "3", true},
		{"M0Vehicle1", "", "", false},
		{"M1_Vehicle_1", "", "", false},
	}
	for _, c := range cases {
		treatment, replicate, err := ParseSampleID(c.id)
		if c.ok != (err == nil) || treatment != c.treatment || replicate != c.replicate {
			t.Errorf("ParseSampleID(%q) = (%q, %q, %v); want (%q, %q, ok=%v)",
				c.id, treatment, replicate, err, c.treatment, c.replicate, c.ok)
		}
	}
}
