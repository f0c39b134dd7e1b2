package exporter

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"labstats/pkg/contracts/domain"
)

// defaultPreviewRows bounds the console preview so a month of data does not
// scroll the terminal.
const defaultPreviewRows = 15

// RenderSummaryPreview formats the leading summary rows as a console table.
// limit <= 0 uses the default row bound.
func RenderSummaryPreview(summary *domain.Summary, limit int) string {
	if summary == nil || len(summary.Rows) == 0 {
		return "No summary rows to display"
	}
	if limit <= 0 {
		limit = defaultPreviewRows
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	// Keep the Spanish column labels exactly as they appear in the workbook.
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	header := table.Row{categoryHeader, DateHeader}
	for _, col := range summary.Columns {
		header = append(header, col)
	}
	tbl.AppendHeader(header)

	shown := len(summary.Rows)
	if shown > limit {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		row := table.Row{summary.Rows[i].Category, summary.Rows[i].DateKey}
		for _, col := range summary.Columns {
			row = append(row, summary.Rows[i].Value(col))
		}
		tbl.AppendRow(row)
	}

	if shown < len(summary.Rows) {
		tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %d of %d rows", shown, len(summary.Rows))})
	}

	return tbl.Render()
}
