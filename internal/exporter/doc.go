// Package exporter renders the processed laboratory statistics into their
// output artifacts.
//
// This package contains three main components:
//
// WorkbookWriter: Writes the three-sheet Excel workbook (calculated summary,
// categorized exam detail, raw downloaded data) with header freezing,
// autofilters and fitted column widths.
//
// CSVWriter: Optional flat CSV sidecar of the summary table with a UTF-8 BOM
// for Excel compatibility.
//
// Preview: Console rendering of the leading summary rows for a quick visual
// check before opening the workbook.
//
// All date values are rendered as YYYY-MM-DD text and the date column is
// labeled "Fecha" in every artifact. No business logic runs here beyond
// formatting.
package exporter
