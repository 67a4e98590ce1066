package polarAnalysis

import (
	"math"
	"path/filepath"

	math2 "github.com/liserjrqlxue/goUtil/math"
	"github.com/xuri/excelize/v2"
)

// GroupOrder is the canonical ordering of the 8 treatment groups:
// starting polarization state (M0/M2) crossed with exposure condition.
var GroupOrder = []string{
	"M0_Vehicle",
	"M0_DEP",
	"M0 -> M1",
	"M0 -> M1+DEP",
	"M2_Vehicle",
	"M2_DEP",
	"M2 -> M1",
	"M2 -> M1+DEP",
}

// StartingLevels and ExposureLevels are the two crossed factors behind GroupOrder.
var (
	StartingLevels = []string{"M0", "M2"}
	ExposureLevels = []string{"Vehicle", "DEP", "M1", "M1+DEP"}
)

type Sample struct {
	ID        string
	Treatment string
	Starting  string
	Exposure  string
	Replicate string

	// one value per measured variable
	Values map[string]float64
}

type GroupMean struct {
	Group string
	Mean  float64
	SEM   float64
	N     int
}

// Comparison is one unordered pair of treatment groups for one variable.
type Comparison struct {
	Group1  string
	Group2  string
	AbsDiff float64
	TRatio  float64
	P       float64
	Rule    string // name of the matching rule that retained it
}

// Effect is one row of an ANOVA table.
type Effect struct {
	Name string
	DF   int
	SS   float64
	MS   float64
	F    float64
	P    float64
}

// AnovaResult holds the repeated-measures ANOVA of one variable plus the
// pooled error term used by the Fisher LSD post-hoc.
type AnovaResult struct {
	Variable string
	Effects  []Effect

	MSE     float64 // mean square of the finest error stratum
	ErrorDF int

	InteractionF float64
	InteractionP float64
}

// Dataset is one assay table (gene panel, cytokine panel or metabolic flux)
// and everything computed from it.
type Dataset struct {
	Name   string
	Input  string
	YLabel string
	LogPCA bool

	Samples   []*Sample
	Variables []string

	// treatment group -> samples, ordered as GroupOrder
	GroupSamples map[string][]*Sample

	// variable -> per-group means ordered as GroupOrder
	Means map[string][]GroupMean

	// variable -> ANOVA table
	Anova map[string]*AnovaResult

	// variable -> all 28 pairwise comparisons; Matched keeps the retained subset
	Comparisons map[string][]Comparison
	Matched     map[string][]Comparison

	xlsx  *excelize.File
	style map[string]int
}

func NewDataset(name, input, yLabel string, logPCA bool) *Dataset {
	return &Dataset{
		Name:         name,
		Input:        input,
		YLabel:       yLabel,
		LogPCA:       logPCA,
		GroupSamples: make(map[string][]*Sample),
		Means:        make(map[string][]GroupMean),
		Anova:        make(map[string]*AnovaResult),
		Comparisons:  make(map[string][]Comparison),
		Matched:      make(map[string][]Comparison),
	}
}

// GroupValues returns the replicate values of one variable in one group,
// in input order.
func (ds *Dataset) GroupValues(variable, group string) []float64 {
	var values []float64
	for _, sample := range ds.GroupSamples[group] {
		values = append(values, sample.Values[variable])
	}
	return values
}

// Aggregate computes mean and standard error per (variable, treatment group).
func (ds *Dataset) Aggregate() {
	for _, variable := range ds.Variables {
		var means []GroupMean
		for _, group := range GroupOrder {
			var values = ds.GroupValues(variable, group)
			var mean, sd = math2.MeanStdDev(values)
			if len(values) == 1 {
				sd = 0
			}
			means = append(
				means,
				GroupMean{
					Group: group,
					Mean:  mean,
					SEM:   sd / math.Sqrt(float64(len(values))),
					N:     len(values),
				},
			)
		}
		ds.Means[variable] = means
	}
}

// PairDiffs computes the absolute mean difference of every unordered pair of
// treatment groups for one variable, keyed by canonical ordering.
func (ds *Dataset) PairDiffs(variable string) []Comparison {
	var (
		means = ds.Means[variable]
		pairs []Comparison
	)
	for i := 0; i < len(means); i++ {
		for j := i + 1; j < len(means); j++ {
			pairs = append(
				pairs,
				Comparison{
					Group1:  means[i].Group,
					Group2:  means[j].Group,
					AbsDiff: math.Abs(means[i].Mean - means[j].Mean),
				},
			)
		}
	}
	return pairs
}

// SingleRun runs the whole pipeline of one dataset: load, aggregate, ANOVA +
// post-hoc, spreadsheet and figure export. Outputs go under outDir/<name>/.
func (ds *Dataset) SingleRun(outDir string, plotFigures bool) error {
	var prefix = filepath.Join(outDir, ds.Name)

	if err := ds.Load(); err != nil {
		return err
	}
	ds.Aggregate()
	if err := ds.RunAnova(); err != nil {
		return err
	}
	ds.MatchComparisons()

	if err := ds.WriteWorkbook(filepath.Join(prefix, ds.Name+".xlsx")); err != nil {
		return err
	}
	if !plotFigures {
		return nil
	}
	if err := ds.PlotBars(prefix); err != nil {
		return err
	}
	if err := ds.PlotPCA(filepath.Join(prefix, ds.Name+".PCA.tiff")); err != nil {
		return err
	}
	if err := ds.PlotHeatmap(prefix); err != nil {
		return err
	}
	return nil
}
