package dataprocessing

import (
	"log/slog"

	"labstats/pkg/contracts/domain"
)

// attendanceMarkers are the columns whose presence identifies the detailed
// report variant. Any one of them is enough; partial exports happen.
var attendanceMarkers = []string{
	"Hospitalización",
	"Emergencia",
	"Consulta Externa",
}

// DetectSchema classifies the report variant from the column set of the first
// readable file. The result is computed once per run and applied uniformly to
// every file; it is never re-evaluated per file.
func DetectSchema(columns []string, logger *slog.Logger) domain.Schema {
	if logger == nil {
		logger = slog.Default()
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	for _, marker := range attendanceMarkers {
		if present[marker] {
			logger.Info("detected detailed report with attention-type breakdown",
				slog.String("marker_column", marker))
			return domain.SchemaDetailed
		}
	}

	if present[domain.SimpleCountColumn] {
		logger.Warn("detected simple report without attention-type breakdown",
			slog.String("count_column", domain.SimpleCountColumn))
		return domain.SchemaSimple
	}

	logger.Warn("unrecognized report column structure, proceeding without numeric columns",
		slog.Any("columns", columns))
	return domain.SchemaUnrecognized
}

// SummaryColumns returns the numeric columns the active schema contributes to
// the summary. The unrecognized variant still carries a zero-valued Total so
// downstream grouping and export have a stable shape.
func SummaryColumns(schema domain.Schema) []string {
	switch schema {
	case domain.SchemaDetailed:
		return append([]string(nil), domain.NumericColumns...)
	default:
		return []string{"Total"}
	}
}
