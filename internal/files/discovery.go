package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// exportPattern matches per-day export files named by their ISO date stem,
// e.g. "2025-01-31.xlsx". Anything starting with a digit is accepted so that
// stems which fail date parsing still flow through the pipeline in degraded
// form.
var exportPattern = regexp.MustCompile(`^\d.*\.xlsx$`)

// ExportFile represents one discovered per-day export file.
type ExportFile struct {
	Path string
	Name string
	Stem string // filename without extension; normally an ISO date
}

// Date attempts to parse the file stem as an ISO calendar date.
func (f ExportFile) Date() (time.Time, error) {
	return time.Parse("2006-01-02", f.Stem)
}

// Discovery provides export file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindDailyExports finds the per-day export files in dir, sorted by name.
// ISO date stems make lexical order chronological.
func (d *Discovery) FindDailyExports(dir string) ([]ExportFile, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []ExportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue // Excel lock-file companions
		}
		if !exportPattern.MatchString(name) {
			continue
		}

		files = append(files, ExportFile{
			Path: filepath.Join(fullPath, name),
			Name: name,
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// LatestExportDate returns the most recent parsable date among the exports in
// dir, or false when none exist. Used by the download tool to resume a range.
func (d *Discovery) LatestExportDate(dir string) (time.Time, bool) {
	exports, err := d.FindDailyExports(dir)
	if err != nil {
		return time.Time{}, false
	}

	var latest time.Time
	var found bool
	for _, f := range exports {
		t, err := f.Date()
		if err != nil {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}
