package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "labstats/internal/errors"
	"labstats/internal/files"
	"labstats/pkg/contracts/domain"
)

const testSkipRows = 4

// writeExport builds a minimal export workbook: testSkipRows title rows, a
// header row, then the given data rows.
func writeExport(t *testing.T, dir, name string, header []string, rows [][]interface{}) files.ExportFile {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i := 0; i < testSkipRows; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, "Informe de estadisticas"))
	}

	for j, h := range header {
		cell, err := excelize.CoordinatesToCellName(j+1, testSkipRows+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}

	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, testSkipRows+2+i)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))

	stem := name[:len(name)-len(filepath.Ext(name))]
	return files.ExportFile{Path: path, Name: name, Stem: stem}
}

func TestParseFileDetailed(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	export := writeExport(t, dir, "2025-03-01.xlsx",
		[]string{"Seccion", "Examen", "Hospitalización", "Emergencia", "Total"},
		[][]interface{}{
			{"Hematología", "BIOMETRÍA HEMÁTICA", 3, 2, 5},
			{"Uroanálisis", "ELEMENTAL Y MICROSCÓPICO DE ORINA", 0, 1, 1},
		})

	records, err := ingester.ParseFile(export, domain.SchemaDetailed)
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "Hematología", r.Seccion)
	assert.Equal(t, "BIOMETRÍA HEMÁTICA", r.Examen)
	assert.Equal(t, "2025-03-01", r.DateKey())
	assert.Equal(t, int64(3), r.Count("Hospitalización"))
	assert.Equal(t, int64(2), r.Count("Emergencia"))
	assert.Equal(t, int64(5), r.Count("Total"))

	// Columns absent from the file are zero-filled, not missing.
	for _, col := range domain.NumericColumns {
		_, ok := r.Counts[col]
		assert.True(t, ok, "column %s should be present", col)
	}
	assert.Equal(t, int64(0), r.Count("REFERENCIA"))
}

func TestParseFileSectionAlias(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	export := writeExport(t, dir, "2025-03-02.xlsx",
		[]string{"Sección", "Examen", "Total"},
		[][]interface{}{{"Microbiología", "CULTIVO DE ORINA", 4}})

	records, err := ingester.ParseFile(export, domain.SchemaDetailed)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Microbiología", records[0].Seccion)
}

func TestParseFileSimpleSchema(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	export := writeExport(t, dir, "2025-03-03.xlsx",
		[]string{"Seccion", "Examen", "Cant. Exámenes"},
		[][]interface{}{{"Hematología", "LEISHMANIA", 7}})

	records, err := ingester.ParseFile(export, domain.SchemaSimple)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(7), r.Count("Total"))
	assert.Equal(t, int64(0), r.Count("Hospitalización"))
	assert.Equal(t, int64(0), r.Count("Emergencia"))
}

func TestParseFileUnparseableStemKeepsRawDate(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	export := writeExport(t, dir, "1er trimestre.xlsx",
		[]string{"Seccion", "Examen", "Total"},
		[][]interface{}{{"Hematología", "LEISHMANIA", 1}})

	records, err := ingester.ParseFile(export, domain.SchemaDetailed)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.IsZero())
	assert.Equal(t, "1er trimestre", records[0].DateKey())
}

func TestIngestFilesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	good := writeExport(t, dir, "2025-03-01.xlsx",
		[]string{"Seccion", "Examen", "Total"},
		[][]interface{}{{"Hematología", "LEISHMANIA", 2}})

	badPath := filepath.Join(dir, "2025-03-02.xlsx")
	require.NoError(t, os.WriteFile(badPath, []byte("not a workbook"), 0644))
	bad := files.ExportFile{Path: badPath, Name: "2025-03-02.xlsx", Stem: "2025-03-02"}

	records, err := ingester.IngestFiles(context.Background(), []files.ExportFile{good, bad}, domain.SchemaDetailed)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIngestFilesAllUnreadable(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	badPath := filepath.Join(dir, "2025-03-02.xlsx")
	require.NoError(t, os.WriteFile(badPath, []byte("not a workbook"), 0644))
	bad := files.ExportFile{Path: badPath, Name: "2025-03-02.xlsx", Stem: "2025-03-02"}

	_, err := ingester.IngestFiles(context.Background(), []files.ExportFile{bad}, domain.SchemaDetailed)
	require.Error(t, err)
	assert.True(t, apperrors.IsNoData(err))
}

func TestReadColumnsCanonicalizesAlias(t *testing.T) {
	dir := t.TempDir()
	ingester := NewIngester(nil, testSkipRows)

	export := writeExport(t, dir, "2025-03-04.xlsx",
		[]string{"Sección", "Examen", "Total"}, nil)

	columns, err := ingester.ReadColumns(export.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Seccion", "Examen", "Total"}, columns)
}

func TestCoerceCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"42", 42},
		{"1,250", 1250},
		{"3.0", 3},
		{"3.9", 3},
		{"n/a", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceCount(tt.in), "input %q", tt.in)
	}
}
