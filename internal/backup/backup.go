// Package backup keeps timestamped copies of the local state file.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/storage"
)

const timestampFormat = "20060102-150405"

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations
type Manager struct {
	statePath  string
	backupDir  string
	maxBackups int
	now        func() time.Time
}

// NewManager creates a manager for the state file at statePath. Backups go
// to a sibling "backups" directory and the newest maxBackups are kept.
func NewManager(statePath string, maxBackups int) *Manager {
	if maxBackups <= 0 {
		maxBackups = constants.MaxBackups
	}
	return &Manager{
		statePath:  statePath,
		backupDir:  filepath.Join(filepath.Dir(statePath), constants.BackupDirName),
		maxBackups: maxBackups,
		now:        time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup copies the current state file into the backup directory.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup skips rotation when called during a restore, so the
// pre-restore copy never evicts the backup being restored.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("state file does not exist: %s", m.statePath)
		}
		return "", fmt.Errorf("failed to read state file: %w", err)
	}
	if _, err := storage.Decode(data); err != nil {
		return "", fmt.Errorf("state file appears to be corrupted: %w", err)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}
	if err := storage.WriteFileAtomic(backupPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return backupPath, nil
}

// nextBackupPath names a backup after the current time, adding a counter
// when several backups land in the same second.
func (m *Manager) nextBackupPath() (string, error) {
	stamp := m.now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		name := fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, counter, constants.BackupFileSuffix)
		path = filepath.Join(m.backupDir, name)
	}
}

// parseBackupName extracts the timestamp and counter from a backup file name.
func parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	counter := 0
	if len(stamp) > len(timestampFormat) && stamp[len(timestampFormat)] == '-' {
		n, err := strconv.Atoi(stamp[len(timestampFormat)+1:])
		if err != nil {
			return time.Time{}, 0, false
		}
		counter, stamp = n, stamp[:len(timestampFormat)]
	}
	ts, err := time.ParseInLocation(timestampFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, counter, true
}

// ListBackups returns a list of all available backups, sorted by timestamp (newest first)
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entry struct {
		info    BackupInfo
		counter int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, counter, ok := parseBackupName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, entry{
			info:    BackupInfo{Path: filepath.Join(m.backupDir, e.Name()), Timestamp: ts, Size: info.Size()},
			counter: counter,
		})
	}

	slices.SortFunc(found, func(a, b entry) int {
		if c := b.info.Timestamp.Compare(a.info.Timestamp); c != 0 {
			return c
		}
		return b.counter - a.counter
	})

	backups := make([]BackupInfo, 0, len(found))
	for _, e := range found {
		backups = append(backups, e.info)
	}
	return backups, nil
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.maxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Load reads and verifies a backup without restoring it.
func (m *Manager) Load(backupPath string) (models.Snapshot, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Snapshot{}, fmt.Errorf("backup file does not exist: %s", backupPath)
		}
		return models.Snapshot{}, fmt.Errorf("failed to read backup: %w", err)
	}
	snap, err := storage.Decode(data)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return models.Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	return snap, nil
}

// RestoreBackup replaces the state file with a verified backup, keeping a
// copy of the current state first. It returns the restored snapshot and the
// path of the pre-restore backup, if one was made.
func (m *Manager) RestoreBackup(backupPath string) (models.Snapshot, string, error) {
	snap, err := m.Load(backupPath)
	if err != nil {
		return models.Snapshot{}, "", err
	}

	var current string
	if _, err := os.Stat(m.statePath); err == nil {
		current, err = m.createBackup(true)
		if err != nil {
			return models.Snapshot{}, "", fmt.Errorf("failed to backup current state before restore: %w", err)
		}
		logger.Info("Created backup of current state", "path", current)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return models.Snapshot{}, "", fmt.Errorf("failed to read backup: %w", err)
	}
	if err := storage.WriteFileAtomic(m.statePath, data, 0600); err != nil {
		return models.Snapshot{}, "", fmt.Errorf("failed to restore state: %w", err)
	}
	return snap, current, nil
}
