package polarAnalysis

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	gzip "github.com/klauspost/pgzip"
)

var isGz = regexp.MustCompile(`\.gz$`)

// SplitTreatment derives the two factor levels from a treatment label.
// "M0 -> M1+DEP" splits at the arrow, "M2_Vehicle" at the underscore.
func SplitTreatment(treatment string) (starting, exposure string, err error) {
	if i := strings.Index(treatment, " -> "); i >= 0 {
		return treatment[:i], treatment[i+4:], nil
	}
	if i := strings.Index(treatment, "_"); i >= 0 {
		return treatment[:i], treatment[i+1:], nil
	}
	return "", "", fmt.Errorf("treatment label %q has no factor separator", treatment)
}

// ParseSampleID splits a sample identifier "<treatment>_<replicate>" at the
// last underscore. The treatment must be one of the 8 canonical labels.
func ParseSampleID(id string) (treatment, replicate string, err error) {
	var i = strings.LastIndex(id, "_")
	if i < 0 {
		return "", "", fmt.Errorf("sample id %q has no replicate suffix", id)
	}
	treatment, replicate = id[:i], id[i+1:]
	for _, group := range GroupOrder {
		if treatment == group {
			return treatment, replicate, nil
		}
	}
	return "", "", fmt.Errorf("sample id %q: unknown treatment label %q", id, treatment)
}

// readTable reads a tab-delimited table with a header line into one map per
// row. Inputs ending in .gz are decompressed on the fly.
func readTable(path string) (data []map[string]string, title []string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var scanner *bufio.Scanner
	if isGz.MatchString(path) {
		gr, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		defer gr.Close()
		scanner = bufio.NewScanner(gr)
	} else {
		scanner = bufio.NewScanner(file)
	}

	for scanner.Scan() {
		var line = strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		var fields = strings.Split(line, "\t")
		if title == nil {
			title = fields
			continue
		}
		if len(fields) != len(title) {
			return nil, nil, fmt.Errorf("row %d has %d fields, header has %d", len(data)+2, len(fields), len(title))
		}
		var item = make(map[string]string, len(title))
		for i, key := range title {
			item[key] = fields[i]
		}
		data = append(data, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if title == nil {
		return nil, nil, fmt.Errorf("empty table")
	}
	return data, title, nil
}

// Load reads the dataset table and derives the per-sample grouping fields
// from the sample identifiers.
func (ds *Dataset) Load() error {
	data, title, err := readTable(ds.Input)
	if err != nil {
		return &DataLoadError{Path: ds.Input, Err: err}
	}
	if title[0] != "Sample" {
		return &DataLoadError{Path: ds.Input, Err: fmt.Errorf("first column is %q, want Sample", title[0])}
	}
	ds.Variables = title[1:]

	for _, item := range data {
		treatment, replicate, err := ParseSampleID(item["Sample"])
		if err != nil {
			return &DataLoadError{Path: ds.Input, Err: err}
		}
		starting, exposure, err := SplitTreatment(treatment)
		if err != nil {
			return &DataLoadError{Path: ds.Input, Err: err}
		}

		var sample = &Sample{
			ID:        item["Sample"],
			Treatment: treatment,
			Starting:  starting,
			Exposure:  exposure,
			Replicate: replicate,
			Values:    make(map[string]float64, len(ds.Variables)),
		}
		for _, variable := range ds.Variables {
			value, err := strconv.ParseFloat(item[variable], 64)
			if err != nil {
				return &DataLoadError{
					Path: ds.Input,
					Err:  fmt.Errorf("sample %s, variable %s: %v", sample.ID, variable, err),
				}
			}
			sample.Values[variable] = value
		}

		ds.Samples = append(ds.Samples, sample)
		ds.GroupSamples[treatment] = append(ds.GroupSamples[treatment], sample)
	}
	return nil
}

// CheckBalance verifies the ANOVA preconditions: all 8 treatment groups
// present, equal replicate counts, at least 2 replicates per group.
func (ds *Dataset) CheckBalance() (n int, err error) {
	for _, group := range GroupOrder {
		var count = len(ds.GroupSamples[group])
		if count == 0 {
			return 0, &StatisticalPreconditionError{
				Dataset: ds.Name,
				Reason:  fmt.Sprintf("treatment group %s has no samples", group),
			}
		}
		if n == 0 {
			n = count
		} else if count != n {
			return 0, &StatisticalPreconditionError{
				Dataset: ds.Name,
				Reason:  fmt.Sprintf("unequal group sizes: %s has %d, want %d", group, count, n),
			}
		}
	}
	if n < 2 {
		return 0, &StatisticalPreconditionError{
			Dataset: ds.Name,
			Reason:  fmt.Sprintf("%d replicate per group, need at least 2 for the error stratum", n),
		}
	}
	return n, nil
}
