package polarAnalysis

import (
	"math"
	"os"
	"path/filepath"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/xuri/excelize/v2"
)

var center = &excelize.Style{
	Alignment: &excelize.Alignment{
		Horizontal: "center",
	},
}

func SetCellValue(xlsx *excelize.File, sheet string, col, row int, value interface{}) {
	simpleUtil.CheckErr(
		xlsx.SetCellValue(
			sheet,
			simpleUtil.HandleError(excelize.CoordinatesToCellName(col, row)),
			value,
		),
	)
}

func SetRow(xlsx *excelize.File, sheet string, col, row int, value []interface{}) {
	simpleUtil.CheckErr(
		xlsx.SetSheetRow(
			sheet,
			simpleUtil.HandleError(excelize.CoordinatesToCellName(col, row)),
			&value,
		),
	)
}

func MergeCells(xlsx *excelize.File, sheet string, col1, row1, col2, row2 int) {
	var (
		hCel = simpleUtil.HandleError(excelize.CoordinatesToCellName(col1, row1))
		vCel = simpleUtil.HandleError(excelize.CoordinatesToCellName(col2, row2))
	)
	simpleUtil.CheckErr(xlsx.MergeCell(sheet, hCel, vCel))
}

var sheetList = []string{"GroupMeans", "Comparisons", "ANOVA"}

// WriteWorkbook exports the mean±SEM grid, the retained pairwise comparisons
// and the per-variable ANOVA tables to one xlsx workbook.
func (ds *Dataset) WriteWorkbook(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ExportError{Path: path, Err: err}
	}

	ds.xlsx = excelize.NewFile()
	ds.style = make(map[string]int)
	ds.style["center"] = simpleUtil.HandleError(ds.xlsx.NewStyle(center))
	for i, sheet := range sheetList {
		if i == 0 {
			simpleUtil.CheckErr(ds.xlsx.SetSheetName("Sheet1", sheet))
		} else {
			simpleUtil.HandleError(ds.xlsx.NewSheet(sheet))
		}
	}

	ds.writeGroupMeans()
	ds.writeComparisons()
	ds.writeAnova()

	if err := ds.xlsx.SaveAs(path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// writeGroupMeans lays out variables as rows and one merged Mean/SEM column
// pair per treatment group.
func (ds *Dataset) writeGroupMeans() {
	var sheet = sheetList[0]

	SetCellValue(ds.xlsx, sheet, 1, 1, "Variable")
	MergeCells(ds.xlsx, sheet, 1, 1, 1, 2)
	for i, group := range GroupOrder {
		var col = 2 + i*2
		SetCellValue(ds.xlsx, sheet, col, 1, group)
		MergeCells(ds.xlsx, sheet, col, 1, col+1, 1)
		SetRow(ds.xlsx, sheet, col, 2, []interface{}{"Mean", "SEM"})
	}
	simpleUtil.CheckErr(ds.xlsx.SetColWidth(sheet, "A", "A", 20))
	simpleUtil.CheckErr(
		ds.xlsx.SetCellStyle(
			sheet,
			"A1",
			simpleUtil.HandleError(excelize.CoordinatesToCellName(1+2*len(GroupOrder), 2)),
			ds.style["center"],
		),
	)

	for i, variable := range ds.Variables {
		var row = 3 + i
		SetCellValue(ds.xlsx, sheet, 1, row, variable)
		for j, gm := range ds.Means[variable] {
			SetRow(ds.xlsx, sheet, 2+j*2, row, []interface{}{gm.Mean, gm.SEM})
		}
	}
}

func (ds *Dataset) writeComparisons() {
	var sheet = sheetList[1]

	SetRow(
		ds.xlsx, sheet, 1, 1,
		[]interface{}{"Variable", "Group1", "Group2", "AbsDiff", "tRatio", "P", "P(display)", "Rule"},
	)
	simpleUtil.CheckErr(ds.xlsx.SetColWidth(sheet, "A", "C", 18))

	var row = 2
	for _, variable := range ds.Variables {
		for _, pair := range ds.Matched[variable] {
			SetRow(
				ds.xlsx, sheet, 1, row,
				[]interface{}{
					variable,
					pair.Group1,
					pair.Group2,
					pair.AbsDiff,
					pair.TRatio,
					pair.P,
					FormatP(pair.P),
					pair.Rule,
				},
			)
			row++
		}
	}
}

func (ds *Dataset) writeAnova() {
	var sheet = sheetList[2]

	SetRow(ds.xlsx, sheet, 1, 1, []interface{}{"Variable", "Effect", "DF", "SS", "MS", "F", "P"})
	simpleUtil.CheckErr(ds.xlsx.SetColWidth(sheet, "A", "B", 20))

	var row = 2
	for _, variable := range ds.Variables {
		for _, effect := range ds.Anova[variable].Effects {
			var f, p interface{} = effect.F, effect.P
			if math.IsNaN(effect.F) {
				f, p = "", ""
			}
			SetRow(
				ds.xlsx, sheet, 1, row,
				[]interface{}{variable, effect.Name, effect.DF, effect.SS, effect.MS, f, p},
			)
			row++
		}
	}
}
