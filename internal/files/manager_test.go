package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "labstats/internal/errors"
)

func TestCheckWritableCreatesParent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "reports", "salida.xlsx")

	m := NewManager("")
	require.NoError(t, m.CheckWritable(target))
	assert.DirExists(t, filepath.Join(dir, "reports"))
}

func TestCheckWritableDirectoryAtTarget(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path cannot be opened for writing, but
	// closing a program will not fix that, so it must not read as locked.
	target := filepath.Join(dir, "salida.xlsx")
	require.NoError(t, os.Mkdir(target, 0755))

	err := NewManager("").CheckWritable(target)
	require.Error(t, err)
	assert.False(t, apperrors.IsLocked(err))
	assert.Contains(t, err.Error(), "is a directory")
}

func TestClassifyOpenError(t *testing.T) {
	err := classifyOpenError("/no/such/salida.xlsx", os.ErrPermission)
	require.Error(t, err)
	assert.False(t, apperrors.IsLocked(err))
	assert.Contains(t, err.Error(), "not writable")

	err = classifyOpenError("/no/such/salida.xlsx", errors.New("sharing violation"))
	require.Error(t, err)
	assert.True(t, apperrors.IsLocked(err))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025-03-01.xlsx")

	m := NewManager(dir)
	assert.True(t, m.FileExists("2025-03-01.xlsx"))
	assert.False(t, m.FileExists("2025-03-02.xlsx"))
}

func TestEnsureDirectory(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(dir)
	require.NoError(t, m.EnsureDirectory(filepath.Join("a", "b")))
	assert.DirExists(t, filepath.Join(dir, "a", "b"))
}
