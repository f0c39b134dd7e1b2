package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"labstats/internal/config"
	"labstats/pkg/contracts/domain"
)

// Aggregator rolls the filtered, categorized records up into the period
// summary: per-(category, date) sums, configurable derived columns, a
// synthetic TOTAL row per date and a fixed category ordering.
type Aggregator struct {
	logger    *slog.Logger
	schema    domain.Schema
	derived   []config.DerivedGroup
	rankIndex map[string]int
	totalRank int
}

// NewAggregator creates an aggregator for the active schema. order is the
// fixed category rank list ending in TOTAL; derived declares the merged
// summary columns.
func NewAggregator(schema domain.Schema, derived []config.DerivedGroup, order []string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	rankIndex := make(map[string]int, len(order))
	totalRank := len(order)
	for i, cat := range order {
		// Ranks are spread out so unmapped categories can slot in
		// between the last listed category and TOTAL.
		rankIndex[cat] = i * 2
		if cat == domain.TotalCategory {
			totalRank = i * 2
		}
	}

	return &Aggregator{
		logger:    logger,
		schema:    schema,
		derived:   derived,
		rankIndex: rankIndex,
		totalRank: totalRank,
	}
}

// Summarize produces the ordered summary table from filtered, categorized
// records. Sums are plain int64 addition; missing values were zero-filled at
// ingestion so every column participates.
func (a *Aggregator) Summarize(ctx context.Context, records []domain.ExamRecord) *domain.Summary {
	baseColumns := SummaryColumns(a.schema)

	rows := a.groupByCategoryDate(records, baseColumns)
	a.applyDerived(rows, baseColumns)
	rows = append(rows, a.totalRows(rows, baseColumns)...)
	a.sortRows(rows)

	summary := &domain.Summary{
		Columns: a.columnOrder(baseColumns),
		Rows:    rows,
	}

	a.logger.InfoContext(ctx, "built period summary",
		slog.Int("input_records", len(records)),
		slog.Int("summary_rows", len(rows)),
		slog.Any("columns", summary.Columns))

	return summary
}

// groupByCategoryDate sums the base numeric columns per (category, date).
func (a *Aggregator) groupByCategoryDate(records []domain.ExamRecord, baseColumns []string) []domain.SummaryRow {
	type key struct {
		category string
		dateKey  string
	}

	groups := make(map[key]map[string]int64)
	var order []key

	for i := range records {
		k := key{category: records[i].Category, dateKey: records[i].DateKey()}
		values, ok := groups[k]
		if !ok {
			values = make(map[string]int64, len(baseColumns))
			groups[k] = values
			order = append(order, k)
		}
		for _, col := range baseColumns {
			values[col] += records[i].Count(col)
		}
	}

	rows := make([]domain.SummaryRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, domain.SummaryRow{
			Category: k.category,
			DateKey:  k.dateKey,
			Values:   groups[k],
		})
	}
	return rows
}

// applyDerived evaluates the configured column groups generically: each
// derived column is the sum of its named sources, with sources absent from
// the active schema contributing zero. Derived values are computed from a
// snapshot of the base values so a derived column may reuse a base column's
// name without feedback.
func (a *Aggregator) applyDerived(rows []domain.SummaryRow, baseColumns []string) {
	for i := range rows {
		base := make(map[string]int64, len(baseColumns))
		for _, col := range baseColumns {
			base[col] = rows[i].Values[col]
		}
		for _, group := range a.derived {
			var sum int64
			for _, src := range group.Sources {
				sum += base[src]
			}
			rows[i].Values[group.Name] = sum
		}
	}
}

// totalRows synthesizes one TOTAL pseudo-category row per date, holding the
// column-wise sums across all real categories for that date.
func (a *Aggregator) totalRows(rows []domain.SummaryRow, baseColumns []string) []domain.SummaryRow {
	columns := a.allColumns(baseColumns)

	totalsByDate := make(map[string]map[string]int64)
	var dateOrder []string

	for i := range rows {
		values, ok := totalsByDate[rows[i].DateKey]
		if !ok {
			values = make(map[string]int64, len(columns))
			totalsByDate[rows[i].DateKey] = values
			dateOrder = append(dateOrder, rows[i].DateKey)
		}
		for _, col := range columns {
			values[col] += rows[i].Value(col)
		}
	}

	totals := make([]domain.SummaryRow, 0, len(dateOrder))
	for _, dateKey := range dateOrder {
		totals = append(totals, domain.SummaryRow{
			Category: domain.TotalCategory,
			DateKey:  dateKey,
			Values:   totalsByDate[dateKey],
		})
	}
	return totals
}

// sortRows orders by date ascending then category rank ascending. Date keys
// are ISO text, so string order is chronological.
func (a *Aggregator) sortRows(rows []domain.SummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DateKey != rows[j].DateKey {
			return rows[i].DateKey < rows[j].DateKey
		}
		return a.categoryRank(rows[i].Category) < a.categoryRank(rows[j].Category)
	})
}

// categoryRank maps a category to its position in the fixed ordering list.
// Categories absent from the list rank immediately before TOTAL.
func (a *Aggregator) categoryRank(category string) int {
	if rank, ok := a.rankIndex[category]; ok {
		return rank
	}
	return a.totalRank - 1
}

// columnOrder is the final export order: the derived columns and the grand
// total up front, then the remaining attendance columns in their original
// order.
func (a *Aggregator) columnOrder(baseColumns []string) []string {
	front := make([]string, 0, len(a.derived)+1)
	seen := make(map[string]bool)
	for _, group := range a.derived {
		if !seen[group.Name] {
			front = append(front, group.Name)
			seen[group.Name] = true
		}
	}
	if !seen["Total"] {
		front = append(front, "Total")
		seen["Total"] = true
	}

	columns := front
	for _, col := range baseColumns {
		if !seen[col] {
			columns = append(columns, col)
			seen[col] = true
		}
	}
	return columns
}

// allColumns is the base plus derived column set, deduplicated, in summation
// order.
func (a *Aggregator) allColumns(baseColumns []string) []string {
	seen := make(map[string]bool, len(baseColumns)+len(a.derived))
	columns := make([]string, 0, len(baseColumns)+len(a.derived))
	for _, col := range baseColumns {
		if !seen[col] {
			columns = append(columns, col)
			seen[col] = true
		}
	}
	for _, group := range a.derived {
		if !seen[group.Name] {
			columns = append(columns, group.Name)
			seen[group.Name] = true
		}
	}
	return columns
}
