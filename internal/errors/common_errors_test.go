package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("file is busy")
	err := NewStorageError("save workbook", cause)

	assert.Contains(t, err.Error(), "save workbook")
	assert.Contains(t, err.Error(), "file is busy")
	assert.ErrorIs(t, err, cause)
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewParsingError("bad header", nil).
		WithContext("file", "2025-03-01.xlsx").
		WithContext("row", 5)

	assert.Equal(t, "2025-03-01.xlsx", err.Context["file"])
	assert.Equal(t, 5, err.Context["row"])
}

func TestIsNoData(t *testing.T) {
	err := NewNoDataError("no export files could be ingested")
	assert.True(t, IsNoData(err))
	assert.False(t, IsLocked(err))

	wrapped := fmt.Errorf("pipeline: %w", err)
	assert.True(t, IsNoData(wrapped))

	assert.False(t, IsNoData(errors.New("plain")))
	assert.False(t, IsNoData(nil))
}

func TestIsLocked(t *testing.T) {
	err := NewLockedError("salida.xlsx", errors.New("permission denied"))
	require.True(t, IsLocked(err))
	assert.False(t, IsNoData(err))
	assert.Equal(t, "salida.xlsx", err.Context["path"])
}
