package polarAnalysis

import (
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	math2 "github.com/liserjrqlxue/goUtil/math"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// zscoreMeans z-scores the group-mean profile of every variable across the 8
// treatment groups. Rows are groups in canonical order, columns variables.
func (ds *Dataset) zscoreMeans() *mat.Dense {
	var z = mat.NewDense(len(GroupOrder), len(ds.Variables), nil)
	for j, variable := range ds.Variables {
		var column = make([]float64, len(GroupOrder))
		for i, gm := range ds.Means[variable] {
			column[i] = gm.Mean
		}
		var mean, sd = math2.MeanStdDev(column)
		for i, v := range column {
			if sd == 0 {
				z.Set(i, j, 0)
			} else {
				z.Set(i, j, (v-mean)/sd)
			}
		}
	}
	return z
}

// hclustOrder returns the leaf order of average-linkage agglomerative
// clustering over euclidean distances between the given profiles.
func hclustOrder(profiles [][]float64) []int {
	var n = len(profiles)
	if n < 2 {
		var order = make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}

	var dist = make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			var sum float64
			for k := range profiles[i] {
				sum += sq(profiles[i][k] - profiles[j][k])
			}
			dist[i][j] = math.Sqrt(sum)
		}
	}

	var clusters [][]int
	for i := 0; i < n; i++ {
		clusters = append(clusters, []int{i})
	}

	var linkage = func(c1, c2 []int) float64 {
		var sum float64
		for _, i := range c1 {
			for _, j := range c2 {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(c1)*len(c2))
	}

	for len(clusters) > 1 {
		var bi, bj = 0, 1
		var best = math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := linkage(clusters[i], clusters[j]); d < best {
					best, bi, bj = d, i, j
				}
			}
		}
		var merged = append(append([]int{}, clusters[bi]...), clusters[bj]...)
		clusters = append(clusters[:bj], clusters[bj+1:]...)
		clusters[bi] = merged
	}
	return clusters[0]
}

type zGrid struct {
	z       *mat.Dense
	rowPerm []int
	colPerm []int
}

func (g *zGrid) Dims() (c, r int) {
	rows, cols := g.z.Dims()
	return cols, rows
}

func (g *zGrid) Z(c, r int) float64 { return g.z.At(g.rowPerm[r], g.colPerm[c]) }
func (g *zGrid) X(c int) float64    { return float64(c) }
func (g *zGrid) Y(r int) float64    { return float64(r) }

// PlotHeatmap renders the hierarchically-clustered heatmap of z-scored group
// means, both as a raster TIFF and as an interactive HTML chart.
func (ds *Dataset) PlotHeatmap(prefix string) error {
	var (
		z          = ds.zscoreMeans()
		rows, cols = z.Dims()
	)

	var rowProfiles = make([][]float64, rows)
	for i := range rowProfiles {
		rowProfiles[i] = mat.Row(nil, i, z)
	}
	var colProfiles = make([][]float64, cols)
	for j := range colProfiles {
		colProfiles[j] = mat.Col(nil, j, z)
	}
	var (
		rowPerm = hclustOrder(rowProfiles)
		colPerm = hclustOrder(colProfiles)
	)

	var groupNames = make([]string, rows)
	for i, ri := range rowPerm {
		groupNames[i] = GroupOrder[ri]
	}
	var varNames = make([]string, cols)
	for j, cj := range colPerm {
		varNames[j] = ds.Variables[cj]
	}

	if err := ds.plotHeatmapRaster(z, rowPerm, colPerm, groupNames, varNames,
		filepath.Join(prefix, ds.Name+".heatmap.tiff")); err != nil {
		return err
	}
	return ds.plotHeatmapHTML(z, rowPerm, colPerm, groupNames, varNames,
		filepath.Join(prefix, ds.Name+".heatmap.html"))
}

func (ds *Dataset) plotHeatmapRaster(z *mat.Dense, rowPerm, colPerm []int, groupNames, varNames []string, path string) error {
	var p = plot.New()
	p.Title.Text = ds.Name + " group means (z-score)"
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	var heat = plotter.NewHeatMap(
		&zGrid{z: z, rowPerm: rowPerm, colPerm: colPerm},
		moreland.SmoothBlueRed().Palette(255),
	)
	p.Add(heat)
	p.NominalX(varNames...)
	p.NominalY(groupNames...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

func (ds *Dataset) plotHeatmapHTML(z *mat.Dense, rowPerm, colPerm []int, groupNames, varNames []string, path string) error {
	var limit float64
	var flat = make([]float64, 0, len(rowPerm)*len(colPerm))
	for _, ri := range rowPerm {
		for _, cj := range colPerm {
			flat = append(flat, math.Abs(z.At(ri, cj)))
		}
	}
	limit, _ = stats.Max(flat)
	if limit == 0 {
		limit = 1
	}

	var hm = charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    ds.Name + " group means",
			Subtitle: "z-score per variable, clustered",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: groupNames}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(-limit),
			Max:        float32(limit),
		}),
	)

	var data []opts.HeatMapData
	for r, ri := range rowPerm {
		for c, cj := range colPerm {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, z.At(ri, cj)}})
		}
	}
	hm.SetXAxis(varNames).AddSeries("zscore", data)

	output, err := os.Create(path)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	defer output.Close()
	if err := hm.Render(output); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
