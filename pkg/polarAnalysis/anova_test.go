package polarAnalysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"
)

// buildDataset assembles an in-memory dataset with one variable: per-group
// nominal mean plus a replicate-level perturbation.
func buildDataset(n int, groupMeans map[string]float64, noise func(ia, ib, s int) float64) *Dataset {
	var ds = NewDataset("test", "", "", false)
	ds.Variables = []string{"VarA"}
	for ia, starting := range StartingLevels {
		for ib, exposure := range ExposureLevels {
			var group = GroupLabel(starting, exposure)
			for s := 0; s < n; s++ {
				var sample = &Sample{
					ID:        fmt.Sprintf("%s_%d", group, s+1),
					Treatment: group,
					Starting:  starting,
					Exposure:  exposure,
					Replicate: strconv.Itoa(s + 1),
					Values: map[string]float64{
						"VarA": groupMeans[group] + noise(ia, ib, s),
					},
				}
				ds.Samples = append(ds.Samples, sample)
				ds.GroupSamples[group] = append(ds.GroupSamples[group], sample)
			}
		}
	}
	return ds
}

// rippleNoise perturbs every cell/replicate differently so all ANOVA strata,
// the residual included, receive nonzero variance.
func rippleNoise(amplitude float64) func(ia, ib, s int) float64 {
	return func(ia, ib, s int) float64 {
		return amplitude * math.Sin(float64((ia*7+ib*3+s*11)%13))
	}
}

func flatMeans() map[string]float64 {
	var means = make(map[string]float64)
	for _, group := range GroupOrder {
		means[group] = 1
	}
	return means
}

func TestAggregate(t *testing.T) {
	var ds = buildDataset(5, flatMeans(), rippleNoise(0.2))
	ds.Aggregate()

	for _, group := range GroupOrder {
		var values = ds.GroupValues("VarA", group)
		var sum float64
		for _, v := range values {
			sum += v
		}
		var want = sum / float64(len(values))

		var got GroupMean
		for _, gm := range ds.Means["VarA"] {
			if gm.Group == group {
				got = gm
			}
		}
		if math.Abs(got.Mean-want) > 1e-9 {
			t.Errorf("mean(%s) = %g; want %g", group, got.Mean, want)
		}
		if got.N != 5 {
			t.Errorf("n(%s) = %d; want 5", group, got.N)
		}

		// SEM = sample SD / sqrt(n)
		var ss float64
		for _, v := range values {
			ss += (v - want) * (v - want)
		}
		var sem = math.Sqrt(ss/float64(len(values)-1)) / math.Sqrt(float64(len(values)))
		if math.Abs(got.SEM-sem) > 1e-9 {
			t.Errorf("SEM(%s) = %g; want %g", group, got.SEM, sem)
		}
	}
}

func TestPairDiffs(t *testing.T) {
	var ds = buildDataset(5, flatMeans(), rippleNoise(0.2))
	ds.Aggregate()

	var pairs = ds.PairDiffs("VarA")
	if len(pairs) != 28 {
		t.Fatalf("pair count = %d; want 28", len(pairs))
	}

	var mean = make(map[string]float64)
	for _, gm := range ds.Means["VarA"] {
		mean[gm.Group] = gm.Mean
	}
	for _, pair := range pairs {
		if pair.AbsDiff < 0 {
			t.Errorf("diff(%s, %s) = %g; want >= 0", pair.Group1, pair.Group2, pair.AbsDiff)
		}
		var want = math.Abs(mean[pair.Group2] - mean[pair.Group1])
		if math.Abs(pair.AbsDiff-want) > 1e-12 {
			t.Errorf("diff(%s, %s) = %g, not symmetric to %g", pair.Group1, pair.Group2, pair.AbsDiff, want)
		}
	}
}

// the within-subject decomposition must be exhaustive
func TestAnovaDecomposition(t *testing.T) {
	var ds = buildDataset(5, flatMeans(), rippleNoise(0.3))
	var result = ds.anovaOne("VarA", 5)

	var grand float64
	for _, sample := range ds.Samples {
		grand += sample.Values["VarA"]
	}
	grand /= float64(len(ds.Samples))
	var ssTotal float64
	for _, sample := range ds.Samples {
		ssTotal += (sample.Values["VarA"] - grand) * (sample.Values["VarA"] - grand)
	}

	var sum float64
	var dfSum int
	for _, effect := range result.Effects {
		sum += effect.SS
		dfSum += effect.DF
	}
	if math.Abs(sum-ssTotal) > 1e-9 {
		t.Errorf("sum of SS = %g; want total %g", sum, ssTotal)
	}
	if dfSum != len(ds.Samples)-1 {
		t.Errorf("sum of DF = %d; want %d", dfSum, len(ds.Samples)-1)
	}
	if result.ErrorDF != (len(StartingLevels)-1)*(len(ExposureLevels)-1)*4 {
		t.Errorf("error DF = %d; want 12", result.ErrorDF)
	}
}

// zero within-cell noise collapses the error term: p is exactly 0 for
// separated means and 1 for identical ones.
func TestLSDDegenerate(t *testing.T) {
	var means = flatMeans()
	means["M0 -> M1"] = 3
	var ds = buildDataset(5, means, func(ia, ib, s int) float64 { return 0 })
	ds.Aggregate()
	if err := ds.RunAnova(); err != nil {
		t.Fatal(err)
	}

	for _, pair := range ds.Comparisons["VarA"] {
		var separated = pair.Group1 == "M0 -> M1" || pair.Group2 == "M0 -> M1"
		if separated && pair.P != 0 {
			t.Errorf("p(%s, %s) = %g; want 0", pair.Group1, pair.Group2, pair.P)
		}
		if !separated && pair.P != 1 {
			t.Errorf("p(%s, %s) = %g; want 1", pair.Group1, pair.Group2, pair.P)
		}
	}
}

// end-to-end scenario: a clearly separated within-M0 pair must come out
// significant and retained by the first matching rule.
func TestEndToEnd(t *testing.T) {
	var means = flatMeans()
	means["M0_Vehicle"] = 0
	means["M0 -> M1"] = 2
	var ds = buildDataset(5, means, rippleNoise(0.1))
	ds.Aggregate()
	if err := ds.RunAnova(); err != nil {
		t.Fatal(err)
	}
	ds.MatchComparisons()

	var found bool
	for _, pair := range ds.Matched["VarA"] {
		if pair.Group1 == "M0_Vehicle" && pair.Group2 == "M0 -> M1" {
			found = true
			if pair.P >= 0.05 {
				t.Errorf("p(M0_Vehicle, M0 -> M1) = %g; want < 0.05", pair.P)
			}
			if pair.Rule != "within M0" {
				t.Errorf("rule = %q; want %q", pair.Rule, "within M0")
			}
		}
		if (pair.Group1 == "M0_Vehicle" && pair.Group2 == "M2_DEP") ||
			(pair.Group1 == "M2_DEP" && pair.Group2 == "M0_Vehicle") {
			t.Errorf("(M0_Vehicle, M2_DEP) retained by rule %q; want discarded", pair.Rule)
		}
	}
	if !found {
		t.Error("(M0_Vehicle, M0 -> M1) missing from the retained set")
	}

	// p derives from |t|: recomputing with swapped groups changes nothing
	var result = ds.Anova["VarA"]
	var mean = make(map[string]float64)
	for _, gm := range ds.Means["VarA"] {
		mean[gm.Group] = gm.Mean
	}
	var se = math.Sqrt(result.MSE * (1.0/5 + 1.0/5))
	var t12 = math.Abs(mean["M0_Vehicle"]-mean["M0 -> M1"]) / se
	var t21 = math.Abs(mean["M0 -> M1"]-mean["M0_Vehicle"]) / se
	if t12 != t21 {
		t.Errorf("t-ratio depends on pair order: %g != %g", t12, t21)
	}
}

// strong crossed pattern: interaction must dominate the residual
func TestInteractionSignificant(t *testing.T) {
	var means = make(map[string]float64)
	for _, group := range GroupOrder {
		means[group] = 0
	}
	// M0 rises under polarization, M2 falls: a pure interaction
	means["M0 -> M1"] = 5
	means["M0 -> M1+DEP"] = 5
	means["M2 -> M1"] = -5
	means["M2 -> M1+DEP"] = -5

	var ds = buildDataset(5, means, rippleNoise(0.1))
	ds.Aggregate()
	if err := ds.RunAnova(); err != nil {
		t.Fatal(err)
	}
	var result = ds.Anova["VarA"]
	if result.InteractionP >= 0.001 {
		t.Errorf("interaction p = %g; want < 0.001", result.InteractionP)
	}
}

func TestCheckBalance(t *testing.T) {
	var ds = buildDataset(5, flatMeans(), rippleNoise(0.1))
	ds.GroupSamples["M0_DEP"] = ds.GroupSamples["M0_DEP"][:4]
	var _, err = ds.CheckBalance()
	var precondition *StatisticalPreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("err = %v; want StatisticalPreconditionError", err)
	}

	ds = buildDataset(1, flatMeans(), rippleNoise(0.1))
	_, err = ds.CheckBalance()
	if !errors.As(err, &precondition) {
		t.Fatalf("err = %v; want StatisticalPreconditionError for n=1", err)
	}

	ds = buildDataset(5, flatMeans(), rippleNoise(0.1))
	n, err := ds.CheckBalance()
	if err != nil || n != 5 {
		t.Fatalf("CheckBalance = (%d, %v); want (5, nil)", n, err)
	}
}
