package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestFindDailyExports(t *testing.T) {
	dir := t.TempDir()

	touch(t, dir, "2025-03-02.xlsx")
	touch(t, dir, "2025-03-01.xlsx")
	touch(t, dir, "~$2025-03-01.xlsx") // Excel lock-file companion
	touch(t, dir, "resumen.xlsx")      // does not start with a digit
	touch(t, dir, "2025-03-03.csv")    // wrong extension
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2025-old.xlsx"), 0755))

	exports, err := NewDiscovery("").FindDailyExports(dir)
	require.NoError(t, err)

	require.Len(t, exports, 2)
	assert.Equal(t, "2025-03-01.xlsx", exports[0].Name)
	assert.Equal(t, "2025-03-01", exports[0].Stem)
	assert.Equal(t, "2025-03-02.xlsx", exports[1].Name)
}

func TestFindDailyExportsMissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindDailyExports(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestExportFileDate(t *testing.T) {
	f := ExportFile{Stem: "2025-03-01"}
	d, err := f.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ExportFile{Stem: "1er trimestre"}.Date()
	require.Error(t, err)
}

func TestLatestExportDate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025-03-01.xlsx")
	touch(t, dir, "2025-03-05.xlsx")
	touch(t, dir, "9999 sin fecha.xlsx")

	latest, found := NewDiscovery("").LatestExportDate(dir)
	require.True(t, found)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), latest)
}

func TestLatestExportDateEmptyDir(t *testing.T) {
	_, found := NewDiscovery("").LatestExportDate(t.TempDir())
	assert.False(t, found)
}
