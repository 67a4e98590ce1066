package main

import (
	"flag"
	"log"

	util "PolarAnalysis/pkg/polarAnalysis"

	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
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
		"output post-hoc table",
	)
	all = flag.Bool(
		"all",
		false,
		"report all 28 pairs, not only the retained comparisons",
	)
)

func main() {
	flag.Parse()
	if *input == "" || *output == "" {
		flag.PrintDefaults()
		log.Fatal("-i/-o required!")
	}

	var ds = util.NewDataset("posthoc", *input, "", false)
	simpleUtil.CheckErr(ds.Load())
	ds.Aggregate()
	simpleUtil.CheckErr(ds.RunAnova())
	ds.MatchComparisons()

	var out = osUtil.Create(*output)
	defer simpleUtil.DeferClose(out)

	fmtUtil.FprintStringArray(
		out,
		[]string{"Variable", "Group1", "Group2", "AbsDiff", "tRatio", "P", "Rule", "interactionP"},
		"\t",
	)
	for _, variable := range ds.Variables {
		var pairs = ds.Matched[variable]
		if *all {
			pairs = ds.Comparisons[variable]
		}
		for _, pair := range pairs {
			fmtUtil.Fprintf(
				out,
				"%s\t%s\t%s\t%f\t%f\t%s\t%s\t%s\n",
				variable,
				pair.Group1,
				pair.Group2,
				pair.AbsDiff,
				pair.TRatio,
				util.FormatP(pair.P),
				pair.Rule,
				util.FormatP(ds.Anova[variable].InteractionP),
			)
		}
	}
}
