package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"labstats/pkg/contracts/domain"
)

func TestRenderSummaryPreview(t *testing.T) {
	out := RenderSummaryPreview(sampleSummary(), 0)

	assert.Contains(t, out, "Hematologico")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, DateHeader)
	assert.NotContains(t, out, "Showing")
}

func TestRenderSummaryPreviewLimitsRows(t *testing.T) {
	summary := &domain.Summary{
		Columns: []string{"Total"},
	}
	for i := 0; i < 30; i++ {
		summary.Rows = append(summary.Rows, domain.SummaryRow{
			Category: "Hematologico",
			DateKey:  "2025-03-01",
			Values:   map[string]int64{"Total": int64(i)},
		})
	}

	out := RenderSummaryPreview(summary, 5)
	assert.Contains(t, out, "Showing 5 of 30 rows")
}

func TestRenderSummaryPreviewEmpty(t *testing.T) {
	assert.Equal(t, "No summary rows to display", RenderSummaryPreview(nil, 0))
	assert.Equal(t, "No summary rows to display", RenderSummaryPreview(&domain.Summary{}, 0))
}
