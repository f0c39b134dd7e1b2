package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"labstats/pkg/contracts/domain"
)

func sampleRecord(date, seccion, examen, category string, multiplier int64, counts map[string]int64) domain.ExamRecord {
	d, _ := time.Parse("2006-01-02", date)
	return domain.ExamRecord{
		Date:       d,
		DateRaw:    date,
		Seccion:    seccion,
		Examen:     examen,
		Category:   category,
		Multiplier: multiplier,
		Counts:     counts,
	}
}

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		Columns: []string{"Hospitalización Total", "Total"},
		Rows: []domain.SummaryRow{
			{
				Category: "Hematologico",
				DateKey:  "2025-03-01",
				Values:   map[string]int64{"Hospitalización Total": 3, "Total": 7},
			},
			{
				Category: domain.TotalCategory,
				DateKey:  "2025-03-01",
				Values:   map[string]int64{"Hospitalización Total": 3, "Total": 7},
			},
		},
	}
}

func TestWorkbookWriterSheetsAndHeaders(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "estadistica.xlsx")

	detail := []domain.ExamRecord{
		sampleRecord("2025-03-01", "Hematología", "BIOMETRÍA HEMÁTICA", "Hematologico", 18,
			map[string]int64{"Hospitalización": 36, "Total": 54}),
	}
	raw := []domain.ExamRecord{
		detail[0].Clone(),
		sampleRecord("2025-03-01", "", "Total órdenes: 3", "", 1,
			map[string]int64{"Total": 3}),
	}

	writer := NewWorkbookWriter(domain.SchemaDetailed, nil)
	require.NoError(t, writer.Write(context.Background(), out, sampleSummary(), detail, raw))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetDetail, SheetRaw}, f.GetSheetList())

	summaryRows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.NotEmpty(t, summaryRows)
	assert.Equal(t, []string{"Category", "Fecha", "Hospitalización Total", "Total"}, summaryRows[0])
	require.Len(t, summaryRows, 3)
	assert.Equal(t, "Hematologico", summaryRows[1][0])
	assert.Equal(t, "2025-03-01", summaryRows[1][1])
	assert.Equal(t, "7", summaryRows[1][3])
	assert.Equal(t, domain.TotalCategory, summaryRows[2][0])

	detailRows, err := f.GetRows(SheetDetail)
	require.NoError(t, err)
	require.Len(t, detailRows, 2)
	assert.Equal(t, "Seccion", detailRows[0][0])
	assert.Equal(t, "Examen", detailRows[0][1])
	assert.Equal(t, "multiplier", detailRows[0][2])
	assert.Equal(t, "Category", detailRows[0][3])
	assert.Equal(t, "Fecha", detailRows[0][len(detailRows[0])-1])
	assert.Equal(t, "18", detailRows[1][2])
	assert.Equal(t, "Hematologico", detailRows[1][3])

	// The raw sheet keeps rows the filter dropped.
	rawRows, err := f.GetRows(SheetRaw)
	require.NoError(t, err)
	require.Len(t, rawRows, 3)
	assert.Equal(t, "Total órdenes: 3", rawRows[2][1])
}

func TestWorkbookWriterFreezesAndFilters(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "estadistica.xlsx")

	writer := NewWorkbookWriter(domain.SchemaDetailed, nil)
	require.NoError(t, writer.Write(context.Background(), out, sampleSummary(), nil, nil))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		panes, err := f.GetPanes(sheet)
		require.NoError(t, err)
		assert.True(t, panes.Freeze, "sheet %s header row should be frozen", sheet)
		assert.Equal(t, 1, panes.YSplit)
	}
}

func TestWorkbookWriterUnwritableTarget(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes the write probe fail.
	out := filepath.Join(dir, "estadistica.xlsx")
	require.NoError(t, os.Mkdir(out, 0755))

	writer := NewWorkbookWriter(domain.SchemaDetailed, nil)
	err := writer.Write(context.Background(), out, sampleSummary(), nil, nil)
	require.Error(t, err)
}
