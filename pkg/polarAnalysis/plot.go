package polarAnalysis

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type meanErrs struct {
	plotter.XYs
	plotter.YErrors
}

// PlotBars renders one bar chart per variable: group means with SEM error
// bars, jittered replicate points and significance brackets for the retained
// comparisons. Figures are written as TIFF under prefix/bars/.
func (ds *Dataset) PlotBars(prefix string) error {
	var dir = filepath.Join(prefix, "bars")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ExportError{Path: dir, Err: err}
	}
	for _, variable := range ds.Variables {
		var path = filepath.Join(dir, SafeName(variable)+".tiff")
		if err := ds.plotBar(variable, path); err != nil {
			return err
		}
	}
	return nil
}

func (ds *Dataset) plotBar(variable, path string) error {
	var (
		p     = plot.New()
		means = ds.Means[variable]
		rng   = rand.New(rand.NewSource(1))
	)
	p.Title.Text = variable
	p.Y.Label.Text = ds.YLabel
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	var values = make(plotter.Values, len(means))
	var errPoints = meanErrs{
		XYs:     make(plotter.XYs, len(means)),
		YErrors: make(plotter.YErrors, len(means)),
	}
	for i, gm := range means {
		values[i] = gm.Mean
		errPoints.XYs[i] = plotter.XY{X: float64(i), Y: gm.Mean}
		errPoints.YErrors[i] = struct{ Low, High float64 }{gm.SEM, gm.SEM}
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = vg.Points(0.5)
	p.Add(bars)
	p.NominalX(GroupOrder...)

	errBars, err := plotter.NewYErrorBars(errPoints)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	p.Add(errBars)

	// jittered replicate points
	var raw plotter.XYs
	var rawValues []float64
	for i, group := range GroupOrder {
		for _, y := range ds.GroupValues(variable, group) {
			raw = append(raw, plotter.XY{X: float64(i) + (rng.Float64()-0.5)*0.3, Y: y})
			rawValues = append(rawValues, y)
		}
	}
	points, err := plotter.NewScatter(raw)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	points.GlyphStyle.Radius = vg.Points(2)
	points.GlyphStyle.Color = plotutil.Color(0)
	p.Add(points)

	if err := ds.addBrackets(p, variable, means, rawValues); err != nil {
		return &ExportError{Path: path, Err: err}
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// addBrackets stacks one significance bracket per retained comparison above
// the tallest bar, short spans lowest, each labelled with the formatted LSD
// p-value.
func (ds *Dataset) addBrackets(p *plot.Plot, variable string, means []GroupMean, rawValues []float64) error {
	var matched = ds.Matched[variable]
	if len(matched) == 0 {
		return nil
	}

	var index = make(map[string]int, len(means))
	for i, gm := range means {
		index[gm.Group] = i
	}

	var top, _ = stats.Max(rawValues)
	var bottom, _ = stats.Min(rawValues)
	for _, gm := range means {
		top = math.Max(top, gm.Mean+gm.SEM)
		bottom = math.Min(bottom, 0)
	}
	var span = top - bottom
	if span == 0 {
		span = 1
	}

	// short brackets sit lowest
	var order = make([]Comparison, len(matched))
	copy(order, matched)
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if bracketWidth(order[j], index) < bracketWidth(order[i], index) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var labels plotter.XYLabels
	for k, pair := range order {
		var (
			x1   = float64(index[pair.Group1])
			x2   = float64(index[pair.Group2])
			y    = top + (0.05+0.07*float64(k))*span
			tick = 0.015 * span
		)
		line, err := plotter.NewLine(plotter.XYs{
			{X: x1, Y: y - tick},
			{X: x1, Y: y},
			{X: x2, Y: y},
			{X: x2, Y: y - tick},
		})
		if err != nil {
			return err
		}
		line.Width = vg.Points(0.75)
		p.Add(line)

		labels.XYs = append(labels.XYs, plotter.XY{X: (x1 + x2) / 2, Y: y + tick})
		labels.Labels = append(labels.Labels, FormatP(pair.P))
	}

	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(annotations)
	p.Y.Max = top + (0.05+0.07*float64(len(order)))*span + 0.05*span
	return nil
}

func bracketWidth(pair Comparison, index map[string]int) int {
	var w = index[pair.Group2] - index[pair.Group1]
	if w < 0 {
		w = -w
	}
	return w
}
