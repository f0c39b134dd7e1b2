package exporter

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "labstats/internal/errors"
	"labstats/pkg/contracts/domain"
)

// CSVWriter exports the summary table as a flat CSV sidecar next to the
// workbook, for consumers that cannot read xlsx.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteSummary writes the summary rows to filePath. The file starts with a
// UTF-8 BOM so Excel recognizes the accented column names.
func (w *CSVWriter) WriteSummary(ctx context.Context, filePath string, summary *domain.Summary) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("create directory", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.NewStorageError("open csv file", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return apperrors.NewStorageError("write BOM", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := append([]string{categoryHeader, DateHeader}, summary.Columns...)
	if err := writer.Write(headers); err != nil {
		return apperrors.NewStorageError("write csv headers", err)
	}

	for i := range summary.Rows {
		record := make([]string, 0, len(headers))
		record = append(record, summary.Rows[i].Category, summary.Rows[i].DateKey)
		for _, col := range summary.Columns {
			record = append(record, strconv.FormatInt(summary.Rows[i].Value(col), 10))
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("write csv record", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("flush csv", err)
	}

	w.logger.InfoContext(ctx, "summary csv saved",
		slog.String("path", filePath),
		slog.Int("rows", len(summary.Rows)))

	return nil
}
