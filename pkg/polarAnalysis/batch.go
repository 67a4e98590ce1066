package polarAnalysis

import (
	"embed"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/goUtil/textUtil"
)

// Batch runs the analysis pipeline over the registered assay datasets, one
// after the other. Each run is independent; nothing is shared or persisted
// between datasets.
type Batch struct {
	Input        string // optional registry file overriding the embedded one
	OutputPrefix string
	Plot         bool

	Datasets []*Dataset
}

// LoadConfig reads the dataset registry: name, input table, y-axis label and
// the log-PCA flag per dataset. Defaults to the embedded etc/datasets.txt.
func (batch *Batch) LoadConfig(cfgPath string, cfgFS embed.FS) {
	var registry []map[string]string
	if batch.Input != "" {
		registry, _ = textUtil.File2MapArray(batch.Input, "\t", nil)
	} else {
		registry, _ = osUtil.FS2MapArray(osUtil.OpenFS("etc/datasets.txt", cfgPath, cfgFS), "\t", nil)
	}
	for _, m := range registry {
		batch.Datasets = append(
			batch.Datasets,
			NewDataset(m["name"], m["input"], m["yLabel"], m["logPCA"] == "true"),
		)
	}
}

func (batch *Batch) Prepare() {
	simpleUtil.CheckErr(os.MkdirAll(batch.OutputPrefix, 0755))
}

// Run processes every dataset sequentially. The analysis is a one-shot batch:
// the first failure stops the run.
func (batch *Batch) Run() error {
	for _, ds := range batch.Datasets {
		slog.Info("dataset", "name", ds.Name, "input", ds.Input)
		if err := ds.SingleRun(batch.OutputPrefix, batch.Plot); err != nil {
			return err
		}
		slog.Info(
			"dataset done",
			"name", ds.Name,
			"samples", len(ds.Samples),
			"variables", len(ds.Variables),
		)
	}
	return nil
}

// Summary writes summary.txt: per dataset, the variables whose
// Starting x Exposure interaction is significant at 0.05.
func (batch *Batch) Summary(path string) {
	var out = osUtil.Create(path)
	defer simpleUtil.DeferClose(out)

	fmtUtil.FprintStringArray(out, []string{"dataset", "variable", "interactionF", "interactionP"}, "\t")
	for _, ds := range batch.Datasets {
		for _, variable := range ds.Variables {
			var result = ds.Anova[variable]
			if result == nil || result.InteractionP >= 0.05 {
				continue
			}
			fmtUtil.Fprintf(
				out,
				"%s\t%s\t%.4f\t%s\n",
				ds.Name,
				variable,
				result.InteractionF,
				FormatP(result.InteractionP),
			)
		}
	}
}

// BatchRun is the whole pipeline: config, per-dataset analysis, summary.
func (batch *Batch) BatchRun(cfgPath string, cfgFS embed.FS) error {
	now := time.Now()

	batch.LoadConfig(cfgPath, cfgFS)
	batch.Prepare()
	if err := batch.Run(); err != nil {
		return err
	}
	batch.Summary(filepath.Join(batch.OutputPrefix, "summary.txt"))

	slog.Info("Done", "time", time.Since(now))
	return nil
}
