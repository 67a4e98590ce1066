package polarAnalysis

import (
	"regexp"
	"strconv"
)

// FormatP renders a p-value for reporting: 4 decimals, with values below the
// 0.0001 display floor rendered as "<0.0001". Display only, the numeric value
// is kept unrounded upstream.
func FormatP(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}

var unsafeName = regexp.MustCompile(`[^0-9A-Za-z._-]+`)

// SafeName maps a variable name to a filename fragment.
func SafeName(variable string) string {
	return unsafeName.ReplaceAllString(variable, "_")
}
