package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "labstats/internal/errors"
	"labstats/internal/files"
	"labstats/pkg/contracts/domain"
)

// Ingester reads the per-day export files into one combined record table.
type Ingester struct {
	logger   *slog.Logger
	skipRows int
}

// NewIngester creates an ingester. skipRows is the number of title rows
// preceding the header row in every export file.
func NewIngester(logger *slog.Logger, skipRows int) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{logger: logger, skipRows: skipRows}
}

// ReadColumns returns the header row of one export file, used for schema
// detection before ingestion starts.
func (g *Ingester) ReadColumns(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	rows, err := g.sheetRows(f)
	if err != nil {
		return nil, err
	}
	if len(rows) <= g.skipRows {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s has no header row after %d title rows", path, g.skipRows), nil)
	}

	header := make([]string, 0, len(rows[g.skipRows]))
	for _, cell := range rows[g.skipRows] {
		header = append(header, canonicalColumn(cell))
	}
	return header, nil
}

// IngestFiles parses every export, tags rows with the filename-stem date and
// concatenates them in file order. Unreadable files are skipped with a
// warning; the run fails only when not a single file could be ingested.
func (g *Ingester) IngestFiles(ctx context.Context, exports []files.ExportFile, schema domain.Schema) ([]domain.ExamRecord, error) {
	var combined []domain.ExamRecord
	parsed := 0

	for _, export := range exports {
		records, err := g.ParseFile(export, schema)
		if err != nil {
			g.logger.WarnContext(ctx, "skipping unreadable export file",
				slog.String("file", export.Name),
				slog.String("error", err.Error()))
			continue
		}
		parsed++
		combined = append(combined, records...)
		g.logger.InfoContext(ctx, "ingested export file",
			slog.String("file", export.Name),
			slog.Int("records", len(records)))
	}

	if parsed == 0 {
		return nil, apperrors.NewNoDataError("no export files could be ingested")
	}

	g.logger.InfoContext(ctx, "combined export files",
		slog.Int("files", parsed),
		slog.Int("records", len(combined)))

	return combined, nil
}

// ParseFile reads one export into records. The filename stem is parsed as an
// ISO date; when that fails the raw stem is kept, a degraded but non-fatal
// state where the row still groups and sorts as text.
func (g *Ingester) ParseFile(export files.ExportFile, schema domain.Schema) ([]domain.ExamRecord, error) {
	f, err := excelize.OpenFile(export.Path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", export.Name), err)
	}
	defer f.Close()

	rows, err := g.sheetRows(f)
	if err != nil {
		return nil, err
	}
	if len(rows) <= g.skipRows {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s has no data after %d title rows", export.Name, g.skipRows), nil)
	}

	columnIndex := make(map[string]int)
	for j, cell := range rows[g.skipRows] {
		name := canonicalColumn(cell)
		if name == "" {
			continue
		}
		if _, seen := columnIndex[name]; !seen {
			columnIndex[name] = j
		}
	}

	date, dateErr := time.Parse("2006-01-02", export.Stem)
	if dateErr != nil {
		g.logger.Warn("filename stem is not an ISO date, keeping raw value",
			slog.String("file", export.Name),
			slog.String("stem", export.Stem))
		date = time.Time{}
	}

	cellAt := func(row []string, column string) string {
		idx, ok := columnIndex[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []domain.ExamRecord
	for i := g.skipRows + 1; i < len(rows); i++ {
		row := rows[i]
		if rowEmpty(row) {
			continue
		}

		record := domain.ExamRecord{
			Date:    date,
			DateRaw: export.Stem,
			Seccion: cellAt(row, domain.SectionColumn),
			Examen:  cellAt(row, domain.ExamColumn),
			Counts:  make(map[string]int64, len(domain.NumericColumns)),
		}

		switch schema {
		case domain.SchemaSimple:
			// Only the generic exam count exists; it becomes Total and
			// every attendance-type column stays zero.
			for _, col := range domain.NumericColumns {
				record.Counts[col] = 0
			}
			record.Counts["Total"] = coerceCount(cellAt(row, domain.SimpleCountColumn))
		default:
			// Zero-fill columns absent from this particular file, which
			// defends against partial exports.
			for _, col := range domain.NumericColumns {
				record.Counts[col] = coerceCount(cellAt(row, col))
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// sheetRows returns the rows of the first worksheet.
func (g *Ingester) sheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	return rows, nil
}

// canonicalColumn trims a header cell and maps the localized section alias to
// the canonical section column. The alias comparison ignores case.
func canonicalColumn(cell string) string {
	name := strings.TrimSpace(cell)
	if strings.EqualFold(name, domain.SectionAlias) {
		return domain.SectionColumn
	}
	return name
}

// coerceCount parses a numeric cell leniently: thousands separators are
// stripped, fractional values truncate, anything unparseable counts as zero.
func coerceCount(cell string) int64 {
	if cell == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(cell, ",", "")
	if v, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int64(v)
	}
	return 0
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
