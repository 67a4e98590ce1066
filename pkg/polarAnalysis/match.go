package polarAnalysis

import "strings"

// MatchRule is one case of the comparison-curation policy: Match reports
// whether the pair of treatment groups is meaningful to display.
type MatchRule struct {
	Name  string
	Match func(group1, group2 string) bool
}

// MatchRules is the ordered policy selecting which pairwise comparisons are
// reported. Evaluated first match wins; the matched rule name is recorded on
// the comparison. The rules only curate the display set, they never change
// the computed statistics.
var MatchRules = []MatchRule{
	{
		Name: "within M0",
		Match: func(group1, group2 string) bool {
			return strings.HasPrefix(group1, "M0") && strings.HasPrefix(group2, "M0")
		},
	},
	{
		Name: "within M2",
		Match: func(group1, group2 string) bool {
			return strings.HasPrefix(group1, "M2") && strings.HasPrefix(group2, "M2")
		},
	},
	{
		Name: "vehicle baseline",
		Match: func(group1, group2 string) bool {
			return strings.Contains(group1, "Vehicle") && strings.Contains(group2, "Vehicle")
		},
	},
	{
		Name: "combined stimulus",
		Match: func(group1, group2 string) bool {
			return strings.Contains(group1, "+") && strings.Contains(group2, "+")
		},
	},
	{
		Name: "DEP alone",
		Match: func(group1, group2 string) bool {
			return strings.Contains(group1, "_DEP") && strings.Contains(group2, "_DEP")
		},
	},
	{
		Name: "final polarization",
		Match: func(group1, group2 string) bool {
			return isPlainM1(group1) && isPlainM1(group2)
		},
	},
}

// isPlainM1 reports a full polarization without the combined DEP stimulus.
func isPlainM1(group string) bool {
	return strings.HasSuffix(group, " -> M1")
}

// MatchPair applies the ordered policy to one unordered pair and returns the
// name of the first rule that retains it.
func MatchPair(group1, group2 string) (rule string, ok bool) {
	for _, r := range MatchRules {
		if r.Match(group1, group2) {
			return r.Name, true
		}
	}
	return "", false
}

// MatchComparisons filters the computed comparisons of every variable down to
// the retained set and records the admitting rule on each.
func (ds *Dataset) MatchComparisons() {
	for _, variable := range ds.Variables {
		var matched []Comparison
		var pairs = ds.Comparisons[variable]
		for i := range pairs {
			rule, ok := MatchPair(pairs[i].Group1, pairs[i].Group2)
			if !ok {
				continue
			}
			pairs[i].Rule = rule
			matched = append(matched, pairs[i])
		}
		ds.Matched[variable] = matched
	}
}
