package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "labstats/internal/errors"
)

// maxColumnWidth caps the fitted column width so a single long exam name
// cannot stretch a column across the screen.
const maxColumnWidth = 50.0

// writeSheet writes a header row plus data rows to sheet and applies the
// standard formatting: bold frozen header, autofilter over the used range and
// content-fitted column widths.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	widths := make([]int, len(headers))

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return apperrors.NewStorageError("build cell reference", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return apperrors.NewStorageError("write header cell", err)
		}
		widths[i] = len(h)
	}

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return apperrors.NewStorageError("build cell reference", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return apperrors.NewStorageError("write data cell", err)
			}
			if c < len(widths) {
				if n := len(fmt.Sprint(val)); n > widths[c] {
					widths[c] = n
				}
			}
		}
	}

	return formatSheet(f, sheet, len(headers), len(rows), widths)
}

// formatSheet freezes the header row, styles it bold, enables the autofilter
// and sets per-column widths with a small padding, capped at maxColumnWidth.
func formatSheet(f *excelize.File, sheet string, cols, dataRows int, widths []int) error {
	if cols == 0 {
		return nil
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return apperrors.NewStorageError("create header style", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return apperrors.NewStorageError("style header row", err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return apperrors.NewStorageError("freeze header row", err)
	}

	lastCell, err := excelize.CoordinatesToCellName(cols, dataRows+1)
	if err != nil {
		return apperrors.NewStorageError("build cell reference", err)
	}
	if err := f.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
		return apperrors.NewStorageError("set autofilter", err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return apperrors.NewStorageError("build column reference", err)
		}
		fitted := float64(width) + 2
		if fitted > maxColumnWidth {
			fitted = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, fitted); err != nil {
			return apperrors.NewStorageError("set column width", err)
		}
	}

	return nil
}
