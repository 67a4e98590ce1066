package main

import (
	"embed"
	"flag"
	"log"
	"os"

	util "PolarAnalysis/pkg/polarAnalysis"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
)

// flag
var (
	input = flag.String(
		"i",
		"",
		"dataset registry, tab-delimited with columns name/input/yLabel/logPCA, default embedded etc/datasets.txt",
	)
	workDir = flag.String(
		"w",
		"",
		"workdir",
	)
	outputDir = flag.String(
		"o",
		"analysis",
		"output directory",
	)
	plot = flag.Bool(
		"plot",
		true,
		"render figures (bar charts, PCA, heatmaps)",
	)
)

// embed etc
//
//go:embed etc/*.txt
var etcEMFS embed.FS

func main() {
	flag.Parse()
	if *workDir != "" {
		simpleUtil.CheckErr(os.Chdir(*workDir))
	}

	var batch = &util.Batch{
		Input:        *input,
		OutputPrefix: *outputDir,
		Plot:         *plot,
	}
	if err := batch.BatchRun(exPath, etcEMFS); err != nil {
		log.Fatal(err)
	}
}
