package dataprocessing

import (
	"context"
	"log/slog"

	"labstats/internal/config"
	"labstats/pkg/contracts/domain"
)

// categoryRule assigns a category to a record; the second return reports
// whether the rule matched.
type categoryRule func(r *domain.ExamRecord) (string, bool)

// Categorizer assigns each record to one bucket of the closed category set.
// Assignment is an ordered rule chain evaluated in fixed order: exam-name
// override first, then section lookup, with "Other" as the fallback. The
// exam tier lets a handful of named exams be re-categorized independently of
// the clinical section they were filed under; the bulk of exams inherit their
// section's category.
type Categorizer struct {
	logger *slog.Logger
	rules  []categoryRule
}

// NewCategorizer builds the categorizer from the exam config maps.
func NewCategorizer(cfg *config.ExamConfig, logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}

	examCategories := cfg.ExamCategories
	seccionCategories := cfg.SeccionCategories

	return &Categorizer{
		logger: logger,
		rules: []categoryRule{
			func(r *domain.ExamRecord) (string, bool) {
				cat, ok := examCategories[r.Examen]
				return cat, ok
			},
			func(r *domain.ExamRecord) (string, bool) {
				cat, ok := seccionCategories[r.Seccion]
				return cat, ok
			},
		},
	}
}

// Categorize resolves and stores the category of one record.
func (c *Categorizer) Categorize(r *domain.ExamRecord) string {
	if r.Examen == "" {
		return domain.OtherCategory
	}
	for _, rule := range c.rules {
		if cat, ok := rule(r); ok {
			return cat
		}
	}
	return domain.OtherCategory
}

// Apply assigns a category to every record in place. Assignment is total:
// every record leaves with exactly one category.
func (c *Categorizer) Apply(ctx context.Context, records []domain.ExamRecord) {
	fallback := 0
	for i := range records {
		records[i].Category = c.Categorize(&records[i])
		if records[i].Category == domain.OtherCategory {
			fallback++
		}
	}

	c.logger.InfoContext(ctx, "categorized records",
		slog.Int("records", len(records)),
		slog.Int("uncategorized", fallback))
}
