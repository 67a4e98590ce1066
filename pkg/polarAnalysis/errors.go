package polarAnalysis

import "fmt"

// DataLoadError reports a missing or malformed input table. Fatal: the run
// stops, there is nothing to retry in a one-shot batch analysis.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// StatisticalPreconditionError reports data that violates the assumptions of
// the repeated-measures ANOVA (wrong group count, unequal or too-small groups).
type StatisticalPreconditionError struct {
	Dataset  string
	Variable string
	Reason   string
}

func (e *StatisticalPreconditionError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s[%s]: %s", e.Dataset, e.Variable, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Dataset, e.Reason)
}

// ExportError reports an I/O failure writing a figure or spreadsheet.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
