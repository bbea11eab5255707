// Package export writes row sets to spreadsheet files.
package export

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"sql-bridge/internal/value"
)

const DefaultSheet = "Result"

var ErrNoPath = errors.New("export: empty file path")

// XLSX writes rows to path as a single-sheet workbook. The header row holds
// the column names of the first row; NULL cells are left empty. An empty
// row set produces a workbook with an empty sheet.
func XLSX(path string, rows []value.Row) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoPath
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DefaultSheet); err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := writeSheet(f, DefaultSheet, rows); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, rows []value.Row) error {
	columns := rows[0].Columns()
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			v, ok := row.Get(col)
			if !ok || v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v.Interface()); err != nil {
				return err
			}
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
