package polarAnalysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// GroupLabel rebuilds the canonical treatment label from its factor levels.
// Polarizing exposures use the arrow form, resting exposures the underscore.
func GroupLabel(starting, exposure string) string {
	if strings.HasPrefix(exposure, "M1") {
		return starting + " -> " + exposure
	}
	return starting + "_" + exposure
}

// RunAnova fits the two-factor repeated-measures ANOVA for every variable and
// derives the Fisher LSD pairwise comparisons from its pooled error term.
func (ds *Dataset) RunAnova() error {
	n, err := ds.CheckBalance()
	if err != nil {
		return err
	}
	for _, variable := range ds.Variables {
		var result = ds.anovaOne(variable, n)
		ds.Anova[variable] = result
		ds.Comparisons[variable] = ds.lsd(variable, result)
	}
	return nil
}

// anovaOne decomposes one variable into the within-subject strata of a
// Starting x Exposure design with subjects crossed with both factors.
// Replicates are paired across cells by their order within each group.
func (ds *Dataset) anovaOne(variable string, n int) *AnovaResult {
	var (
		a = len(StartingLevels)
		b = len(ExposureLevels)

		grand float64
		mA    = make([]float64, a)
		mB    = make([]float64, b)
		mS    = make([]float64, n)
		mAB   = make([][]float64, a)
		mAS   = make([][]float64, a)
		mBS   = make([][]float64, b)

		cell = make([][][]float64, a)
	)

	for ia, starting := range StartingLevels {
		mAB[ia] = make([]float64, b)
		mAS[ia] = make([]float64, n)
		cell[ia] = make([][]float64, b)
		for ib, exposure := range ExposureLevels {
			cell[ia][ib] = ds.GroupValues(variable, GroupLabel(starting, exposure))
		}
	}
	for ib := range ExposureLevels {
		mBS[ib] = make([]float64, n)
	}

	for ia := 0; ia < a; ia++ {
		for ib := 0; ib < b; ib++ {
			for s := 0; s < n; s++ {
				var x = cell[ia][ib][s]
				grand += x
				mA[ia] += x
				mB[ib] += x
				mS[s] += x
				mAB[ia][ib] += x
				mAS[ia][s] += x
				mBS[ib][s] += x
			}
		}
	}
	grand /= float64(a * b * n)
	for ia := range mA {
		mA[ia] /= float64(b * n)
	}
	for ib := range mB {
		mB[ib] /= float64(a * n)
	}
	for s := range mS {
		mS[s] /= float64(a * b)
	}
	for ia := 0; ia < a; ia++ {
		for ib := 0; ib < b; ib++ {
			mAB[ia][ib] /= float64(n)
		}
		for s := 0; s < n; s++ {
			mAS[ia][s] /= float64(b)
		}
	}
	for ib := 0; ib < b; ib++ {
		for s := 0; s < n; s++ {
			mBS[ib][s] /= float64(a)
		}
	}

	var ssTotal, ssA, ssB, ssAB, ssS, ssAS, ssBS float64
	for ia := 0; ia < a; ia++ {
		ssA += sq(mA[ia] - grand)
		for ib := 0; ib < b; ib++ {
			ssAB += sq(mAB[ia][ib] - mA[ia] - mB[ib] + grand)
			for s := 0; s < n; s++ {
				ssTotal += sq(cell[ia][ib][s] - grand)
			}
		}
		for s := 0; s < n; s++ {
			ssAS += sq(mAS[ia][s] - mA[ia] - mS[s] + grand)
		}
	}
	for ib := 0; ib < b; ib++ {
		ssB += sq(mB[ib] - grand)
		for s := 0; s < n; s++ {
			ssBS += sq(mBS[ib][s] - mB[ib] - mS[s] + grand)
		}
	}
	for s := 0; s < n; s++ {
		ssS += sq(mS[s] - grand)
	}
	ssA *= float64(b * n)
	ssB *= float64(a * n)
	ssAB *= float64(n)
	ssS *= float64(a * b)
	ssAS *= float64(b)
	ssBS *= float64(a)

	var ssABS = ssTotal - ssA - ssB - ssAB - ssS - ssAS - ssBS
	if ssABS < 0 {
		// round-off; the residual stratum cannot be negative
		ssABS = 0
	}

	var (
		dfA   = a - 1
		dfB   = b - 1
		dfAB  = (a - 1) * (b - 1)
		dfS   = n - 1
		dfAS  = (a - 1) * (n - 1)
		dfBS  = (b - 1) * (n - 1)
		dfABS = (a - 1) * (b - 1) * (n - 1)

		msA   = ssA / float64(dfA)
		msB   = ssB / float64(dfB)
		msAB  = ssAB / float64(dfAB)
		msS   = ssS / float64(dfS)
		msAS  = ssAS / float64(dfAS)
		msBS  = ssBS / float64(dfBS)
		msABS = ssABS / float64(dfABS)
	)

	var (
		fA, pA   = fTest(msA, msAS, dfA, dfAS)
		fB, pB   = fTest(msB, msBS, dfB, dfBS)
		fAB, pAB = fTest(msAB, msABS, dfAB, dfABS)
		nan      = math.NaN()
	)

	return &AnovaResult{
		Variable: variable,
		Effects: []Effect{
			{Name: "Subject", DF: dfS, SS: ssS, MS: msS, F: nan, P: nan},
			{Name: "Starting", DF: dfA, SS: ssA, MS: msA, F: fA, P: pA},
			{Name: "Starting:Subject", DF: dfAS, SS: ssAS, MS: msAS, F: nan, P: nan},
			{Name: "Exposure", DF: dfB, SS: ssB, MS: msB, F: fB, P: pB},
			{Name: "Exposure:Subject", DF: dfBS, SS: ssBS, MS: msBS, F: nan, P: nan},
			{Name: "Starting:Exposure", DF: dfAB, SS: ssAB, MS: msAB, F: fAB, P: pAB},
			{Name: "Residual", DF: dfABS, SS: ssABS, MS: msABS, F: nan, P: nan},
		},
		MSE:          msABS,
		ErrorDF:      dfABS,
		InteractionF: fAB,
		InteractionP: pAB,
	}
}

// lsd derives the Fisher LSD t-ratio and two-tailed p-value for every pairwise
// comparison, pooling the residual mean square of the ANOVA. Group sizes and
// degrees of freedom come from the observed data, not fixed constants.
func (ds *Dataset) lsd(variable string, result *AnovaResult) []Comparison {
	var pairs = ds.PairDiffs(variable)
	for i := range pairs {
		var (
			pair = &pairs[i]
			nA   = len(ds.GroupSamples[pair.Group1])
			nB   = len(ds.GroupSamples[pair.Group2])
			se   = math.Sqrt(result.MSE * (1/float64(nA) + 1/float64(nB)))
			df   = float64(nA + nB - 2)
		)
		if se == 0 {
			if pair.AbsDiff == 0 {
				pair.TRatio, pair.P = 0, 1
			} else {
				pair.TRatio, pair.P = math.Inf(1), 0
			}
			continue
		}
		pair.TRatio = pair.AbsDiff / se
		var tDist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pair.P = 2 * (1 - tDist.CDF(math.Abs(pair.TRatio)))
	}
	return pairs
}

func sq(x float64) float64 { return x * x }

func fTest(msEffect, msError float64, dfEffect, dfError int) (f, p float64) {
	if msError == 0 {
		if msEffect == 0 {
			return math.NaN(), math.NaN()
		}
		return math.Inf(1), 0
	}
	f = msEffect / msError
	var fDist = distuv.F{D1: float64(dfEffect), D2: float64(dfError)}
	return f, 1 - fDist.CDF(f)
}
