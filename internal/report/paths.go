// Package report writes and reads the dated end-of-day register reports.
//
// Reports live under a root directory as <root>/<year>/<month>/<y>-<m>-<d>.csv
// with French month names and no zero padding. Each line is either a
// "key;value" summary field or, after the "Erreur caisse" field, an item row
// "quantity;label;unit price;subtotal". Analysis scripts read the file
// positionally, so the layout must not change.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/fileutils"
)

// Extension of report files.
const Extension = ".csv"

// Path returns the report path for date under root without touching the disk.
func Path(root string, date time.Time) (string, error) {
	month, err := dateutils.MonthNameFR(date.Month())
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%d-%d%s", date.Year(), int(date.Month()), date.Day(), Extension)
	return filepath.Join(root, fmt.Sprint(date.Year()), month, name), nil
}

// PreparePath returns the report path for date and creates the year and month
// directories. The root directory itself must already exist.
func PreparePath(root string, date time.Time) (string, error) {
	if !fileutils.DirectoryExists(root) {
		return "", fmt.Errorf("reports root directory not found: %s", root)
	}
	path, err := Path(root, date)
	if err != nil {
		return "", err
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, nil
}

// ArchivedPath is the name an existing report is moved to, e.g.
// "2024-3-9-version-14h05m09s.csv".
func ArchivedPath(path string, at time.Time) string {
	return strings.TrimSuffix(path, Extension) + "-version-" + at.Format(dateutils.TimeLayoutFile) + Extension
}

// ArchiveExisting renames the report at path out of the way when it exists and
// returns the new name, or "" when there was nothing to archive.
func ArchiveExisting(path string, at time.Time) (string, error) {
	if !fileutils.FileExists(path) {
		return "", nil
	}
	archived := ArchivedPath(path, at)
	if err := os.Rename(path, archived); err != nil {
		return "", fmt.Errorf("failed to archive report %s: %w", path, err)
	}
	return archived, nil
}
