// Package backup persists crash-recovery snapshots of a register session.
//
// A snapshot is a versioned JSON document written next to the day's report
// (same name, ".bcp" extension) after every validated transaction. It is
// published atomically, so a crash leaves either the previous snapshot or the
// new one on disk.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/fileutils"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/registererror"
	"github.com/Jeremy009/BMC/internal/session"
)

// Extension of snapshot files.
const Extension = ".bcp"

// PathForReport derives the snapshot path from a report path.
func PathForReport(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + Extension
}

// Manager reads and writes the snapshot of one session.
type Manager struct {
	path   string
	logger logging.Logger
	now    func() time.Time
}

// NewManager creates a manager for the snapshot at path.
func NewManager(path string, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Manager{
		path:   path,
		logger: logger.WithField(logging.FieldBackupPath, path),
		now:    time.Now,
	}
}

// Path returns the snapshot path.
func (m *Manager) Path() string {
	return m.path
}

// Snapshot implements session.Snapshotter.
func (m *Manager) Snapshot(state session.State) error {
	data, err := json.MarshalIndent(fromState(state, m.now().UTC().Round(0)), "", "  ")
	if err != nil {
		return &registererror.BackupWriteFailedError{Path: m.path, Err: err}
	}
	if err := fileutils.WriteFileAtomic(m.path, data, 0644); err != nil {
		m.logger.WithError(err).Error("Failed to write snapshot")
		return &registererror.BackupWriteFailedError{Path: m.path, Err: err}
	}
	m.logger.Debug("Wrote snapshot", logging.F(logging.FieldCount, len(state.History)))
	return nil
}

// Restore reads the snapshot back. A missing file is reported as an error
// wrapping fs.ErrNotExist; anything that cannot be decoded into a valid
// state is a CorruptBackupError.
func (m *Manager) Restore() (session.State, error) {
	return Load(m.path)
}

// Exists reports whether an unconsumed snapshot is on disk.
func (m *Manager) Exists() bool {
	return fileutils.FileExists(m.path)
}

// Discard removes the snapshot. A missing file is not an error.
func (m *Manager) Discard() error {
	if err := fileutils.RemoveIfExists(m.path); err != nil {
		return err
	}
	m.logger.Debug("Discarded snapshot")
	return nil
}

// Load decodes the snapshot at path.
func Load(path string) (session.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.State{}, fmt.Errorf("no backup at %s: %w", path, err)
		}
		return session.State{}, &registererror.CorruptBackupError{Path: path, Reason: "unreadable", Err: err}
	}

	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return session.State{}, &registererror.CorruptBackupError{Path: path, Reason: "invalid JSON", Err: err}
	}
	state, problem := f.toState()
	if problem != "" {
		return session.State{}, &registererror.CorruptBackupError{Path: path, Reason: problem}
	}
	return state, nil
}
