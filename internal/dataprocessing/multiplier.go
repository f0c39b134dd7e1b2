package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"labstats/internal/config"
	"labstats/pkg/contracts/domain"
)

// cultivoMarker is the exam-name substring that selects the batch cultivo
// multiplier regardless of the exact-name table.
const cultivoMarker = "CULTIVO"

// defaultMultiplier applies to unmapped and missing exam names.
const defaultMultiplier int64 = 1

// multiplierRule resolves a multiplier for an exam name; the second return
// reports whether the rule matched.
type multiplierRule func(exam string) (int64, bool)

// MultiplierResolver converts reported order counts into actual unit counts.
// Some exam types represent batched sub-tests: one reported order corresponds
// to several physically performed tests. Resolution is an ordered rule chain;
// the first matching rule wins.
type MultiplierResolver struct {
	logger *slog.Logger
	rules  []multiplierRule
}

// NewMultiplierResolver builds the resolver from the exam config. Rule order
// is fixed: the cultivo substring rule takes priority over the exact-name
// table.
func NewMultiplierResolver(cfg *config.ExamConfig, logger *slog.Logger) *MultiplierResolver {
	if logger == nil {
		logger = slog.Default()
	}

	cultivo := cfg.CultivoMultiplier
	exact := cfg.Multipliers

	return &MultiplierResolver{
		logger: logger,
		rules: []multiplierRule{
			func(exam string) (int64, bool) {
				if strings.Contains(strings.ToUpper(exam), cultivoMarker) {
					return cultivo, true
				}
				return 0, false
			},
			func(exam string) (int64, bool) {
				m, ok := exact[exam]
				return m, ok
			},
		},
	}
}

// Resolve returns the multiplier for one exam name.
func (r *MultiplierResolver) Resolve(exam string) int64 {
	if exam == "" {
		return defaultMultiplier
	}
	for _, rule := range r.rules {
		if m, ok := rule(exam); ok {
			return m
		}
	}
	return defaultMultiplier
}

// Apply resolves and applies the multiplier in place for every record,
// including rows the filter will later drop: resolution must run on the full
// row set so pre-filter numeric totals match the source report. Every numeric
// field, Total included, is overwritten with value times multiplier. The
// multiplier itself is retained on the row for auditability.
func (r *MultiplierResolver) Apply(ctx context.Context, records []domain.ExamRecord) {
	multiplied := 0
	for i := range records {
		m := r.Resolve(records[i].Examen)
		records[i].Multiplier = m
		if m != defaultMultiplier {
			multiplied++
		}
		for col, v := range records[i].Counts {
			records[i].Counts[col] = v * m
		}
	}

	r.logger.InfoContext(ctx, "applied quantity multipliers",
		slog.Int("records", len(records)),
		slog.Int("records_scaled", multiplied))
}
