package main

import (
	"flag"
	"log"

	util "PolarAnalysis/pkg/polarAnalysis"

	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/montanaflynn/stats"
)

// flag
var (
	input = flag.String(
		"i",
		"",
		"input sample table, tab-delimited, Sample column + one column per variable",
	)
	output = flag.String(
		"o",
		"",
		"output outlier report",
	)
	fence = flag.Float64(
		"fence",
		1.5,
		"IQR multiplier for the outlier fences",
	)
)

// Screens replicates before the ANOVA: a value outside the IQR fences of its
// treatment group is worth a second look at the bench records.
func main() {
	flag.Parse()
	if *input == "" || *output == "" {
		flag.PrintDefaults()
		log.Fatal("-i/-o required!")
	}

	var ds = util.NewDataset("outliers", *input, "", false)
	simpleUtil.CheckErr(ds.Load())

	var out = osUtil.Create(*output)
	defer simpleUtil.DeferClose(out)

	fmtUtil.FprintStringArray(
		out,
		[]string{"Variable", "Group", "Sample", "Value", "LowerFence", "UpperFence"},
		"\t",
	)
	for _, variable := range ds.Variables {
		for _, group := range util.GroupOrder {
			var values = ds.GroupValues(variable, group)
			if len(values) < 4 {
				continue
			}
			var quartiles, err = stats.Quartile(values)
			if err != nil {
				continue
			}
			var (
				iqr   = quartiles.Q3 - quartiles.Q1
				lower = quartiles.Q1 - *fence*iqr
				upper = quartiles.Q3 + *fence*iqr
			)
			for _, sample := range ds.GroupSamples[group] {
				var v = sample.Values[variable]
				if v < lower || v > upper {
					fmtUtil.Fprintf(
						out,
						"%s\t%s\t%s\t%f\t%f\t%f\n",
						variable, group, sample.ID, v, lower, upper,
					)
				}
			}
		}
	}
}
