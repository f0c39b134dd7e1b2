package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"labstats/pkg/contracts/domain"
)

// boilerplatePrefixes identify the report's own embedded subtotal and footer
// lines, which would be double-counted if kept as data.
var boilerplatePrefixes = []string{
	"Total órdenes",
	"Generado el",
}

// FilterRecords drops the non-data rows of the combined table: rows with no
// exam name, rows whose exam field holds report boilerplate, and rows with no
// section (the report's own total lines carry exam text but an empty
// section). Runs after multiplier application; dropped rows never reach any
// aggregate, so the two orders produce identical sums; the ordering is kept
// as a fixed invariant rather than left to chance.
func FilterRecords(ctx context.Context, records []domain.ExamRecord, logger *slog.Logger) []domain.ExamRecord {
	if logger == nil {
		logger = slog.Default()
	}

	kept := make([]domain.ExamRecord, 0, len(records))
	for _, r := range records {
		if isDataRow(&r) {
			kept = append(kept, r)
		}
	}

	logger.InfoContext(ctx, "filtered non-data rows",
		slog.Int("before", len(records)),
		slog.Int("after", len(kept)),
		slog.Int("dropped", len(records)-len(kept)))

	return kept
}

func isDataRow(r *domain.ExamRecord) bool {
	if r.Examen == "" {
		return false
	}
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(r.Examen, prefix) {
			return false
		}
	}
	return r.Seccion != ""
}
