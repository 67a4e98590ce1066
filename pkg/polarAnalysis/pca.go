package polarAnalysis

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// sampleMatrix assembles the samples-by-variables matrix, optionally
// log2(x+1) transformed for skewed assay scales.
func (ds *Dataset) sampleMatrix() *mat.Dense {
	var m = mat.NewDense(len(ds.Samples), len(ds.Variables), nil)
	for i, sample := range ds.Samples {
		for j, variable := range ds.Variables {
			var v = sample.Values[variable]
			if ds.LogPCA {
				v = math.Log2(v + 1)
			}
			m.Set(i, j, v)
		}
	}
	return m
}

// PlotPCA projects the samples onto the first two principal components and
// renders one scatter series per treatment group.
func (ds *Dataset) PlotPCA(path string) error {
	if len(ds.Variables) < 2 {
		return &StatisticalPreconditionError{
			Dataset: ds.Name,
			Reason:  "PCA needs at least 2 variables",
		}
	}
	var m = ds.sampleMatrix()
	var rows, cols = m.Dims()

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return &StatisticalPreconditionError{
			Dataset: ds.Name,
			Reason:  "principal component decomposition failed",
		}
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	var variances = pc.VarsTo(nil)

	// project the column-centered data onto PC1/PC2
	var centered = mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		var mean = stat.Mean(mat.Col(nil, j, m), nil)
		for i := 0; i < rows; i++ {
			centered.Set(i, j, m.At(i, j)-mean)
		}
	}
	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, cols, 0, 2))

	var total float64
	for _, v := range variances {
		total += v
	}

	var p = plot.New()
	p.Title.Text = ds.Name + " PCA"
	p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%%)", 100*variances[0]/total)
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%%)", 100*variances[1]/total)
	p.Legend.Top = true

	for gi, group := range GroupOrder {
		var points plotter.XYs
		for i, sample := range ds.Samples {
			if sample.Treatment != group {
				continue
			}
			points = append(points, plotter.XY{X: proj.At(i, 0), Y: proj.At(i, 1)})
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return &ExportError{Path: path, Err: err}
		}
		scatter.GlyphStyle.Color = plotutil.Color(gi)
		scatter.GlyphStyle.Shape = plotutil.Shape(gi)
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add(group, scatter)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := p.Save(7*vg.Inch, 6*vg.Inch, path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
