package exporter

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"labstats/internal/dataprocessing"
	apperrors "labstats/internal/errors"
	"labstats/internal/files"
	"labstats/pkg/contracts/domain"
)

// Workbook sheet names, in their fixed order.
const (
	SheetSummary = "Estadistica Calculada"
	SheetDetail  = "Examenes Categorizados"
	SheetRaw     = "Datos Descargados"
)

// DateHeader is the localized display label for the date column. The rename
// from the internal field happens only at this boundary.
const DateHeader = "Fecha"

const (
	categoryHeader   = "Category"
	multiplierHeader = "multiplier"
)

// WorkbookWriter writes the three-sheet output workbook.
type WorkbookWriter struct {
	logger *slog.Logger
	files  *files.Manager
	schema domain.Schema
}

// NewWorkbookWriter creates a workbook writer for the active schema.
func NewWorkbookWriter(schema domain.Schema, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{
		logger: logger,
		files:  files.NewManager(""),
		schema: schema,
	}
}

// Write saves the summary, the categorized detail and the raw combined table
// to path as a single workbook. The target is probed for writability first so
// a workbook left open in Excel surfaces as a LockedError instead of a save
// failure after all sheets were built.
func (w *WorkbookWriter) Write(ctx context.Context, path string, summary *domain.Summary, detail, raw []domain.ExamRecord) error {
	if err := w.files.CheckWritable(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetSummary)
	if _, err := f.NewSheet(SheetDetail); err != nil {
		return apperrors.NewStorageError("create sheet", err)
	}
	if _, err := f.NewSheet(SheetRaw); err != nil {
		return apperrors.NewStorageError("create sheet", err)
	}

	if err := w.writeSummarySheet(f, summary); err != nil {
		return err
	}
	if err := w.writeDetailSheet(f, detail); err != nil {
		return err
	}
	if err := w.writeRawSheet(f, raw); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save workbook", err)
	}

	w.logger.InfoContext(ctx, "workbook saved",
		slog.String("path", filepath.Clean(path)),
		slog.Int("summary_rows", len(summary.Rows)),
		slog.Int("detail_rows", len(detail)),
		slog.Int("raw_rows", len(raw)))

	return nil
}

// writeSummarySheet renders the ordered summary with the category and date
// up front, then the summary columns in their computed order.
func (w *WorkbookWriter) writeSummarySheet(f *excelize.File, summary *domain.Summary) error {
	headers := append([]string{categoryHeader, DateHeader}, summary.Columns...)

	rows := make([][]interface{}, 0, len(summary.Rows))
	for i := range summary.Rows {
		row := make([]interface{}, 0, len(headers))
		row = append(row, summary.Rows[i].Category, summary.Rows[i].DateKey)
		for _, col := range summary.Columns {
			row = append(row, summary.Rows[i].Value(col))
		}
		rows = append(rows, row)
	}

	return writeSheet(f, SheetSummary, headers, rows)
}

// writeDetailSheet renders the full per-record detail with the identifying
// fields moved to the front.
func (w *WorkbookWriter) writeDetailSheet(f *excelize.File, records []domain.ExamRecord) error {
	numeric := dataprocessing.SummaryColumns(w.schema)
	headers := make([]string, 0, 4+len(numeric)+1)
	headers = append(headers, domain.SectionColumn, domain.ExamColumn, multiplierHeader, categoryHeader)
	headers = append(headers, numeric...)
	headers = append(headers, DateHeader)

	rows := make([][]interface{}, 0, len(records))
	for i := range records {
		row := make([]interface{}, 0, len(headers))
		row = append(row, records[i].Seccion, records[i].Examen, records[i].Multiplier, records[i].Category)
		for _, col := range numeric {
			row = append(row, records[i].Count(col))
		}
		row = append(row, records[i].DateKey())
		rows = append(rows, row)
	}

	return writeSheet(f, SheetDetail, headers, rows)
}

// writeRawSheet renders the combined table as ingested, before filtering and
// categorization.
func (w *WorkbookWriter) writeRawSheet(f *excelize.File, records []domain.ExamRecord) error {
	numeric := dataprocessing.SummaryColumns(w.schema)
	headers := make([]string, 0, 2+len(numeric)+1)
	headers = append(headers, domain.SectionColumn, domain.ExamColumn)
	headers = append(headers, numeric...)
	headers = append(headers, DateHeader)

	rows := make([][]interface{}, 0, len(records))
	for i := range records {
		row := make([]interface{}, 0, len(headers))
		row = append(row, records[i].Seccion, records[i].Examen)
		for _, col := range numeric {
			row = append(row, records[i].Count(col))
		}
		row = append(row, records[i].DateKey())
		rows = append(rows, row)
	}

	return writeSheet(f, SheetRaw, headers, rows)
}
