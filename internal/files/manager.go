package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "labstats/internal/errors"
)

// Manager provides file management operations
type Manager struct {
	basePath string
}

// NewManager creates a new file manager instance
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory with all parent directories
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)
	return os.MkdirAll(fullPath, 0755)
}

// CheckWritable probes whether the destination file can be opened for
// writing right now. The probe does not block or wait: a file exclusively
// held by another process (a workbook open in a spreadsheet application)
// fails immediately and the caller must abort the write. A probe that
// creates the file leaves an empty file behind, which the subsequent write
// overwrites.
func (m *Manager) CheckWritable(path string) error {
	fullPath := m.resolvePath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return classifyOpenError(fullPath, err)
	}
	return f.Close()
}

// classifyOpenError separates the retryable locked condition from failures
// that retrying cannot cure. Only the latter should tell the user to close
// the file: a directory sitting at the target path or a permission problem
// stays a plain storage error.
func classifyOpenError(fullPath string, err error) error {
	if info, statErr := os.Stat(fullPath); statErr == nil && info.IsDir() {
		return apperrors.NewStorageError(
			fmt.Sprintf("output path %s is a directory", fullPath), err)
	}
	if os.IsPermission(err) {
		return apperrors.NewStorageError(
			fmt.Sprintf("output path %s is not writable", fullPath), err)
	}
	return apperrors.NewLockedError(fullPath, err)
}

// resolvePath resolves a path relative to the base path
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.basePath == "" {
		return path
	}
	return filepath.Join(m.basePath, path)
}
