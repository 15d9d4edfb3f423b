// Package storage keeps the local JSON cache of the tracked state.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
)

var (
	ErrNotInitialized     = errors.New("storage not initialized, run 'daylog init' first")
	ErrAlreadyInitialized = errors.New("storage already initialized")
	ErrVersionTooNew      = errors.New("state file was written by a newer daylog")
)

// Document is the on-disk shape of the cache.
type Document struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	State   models.Snapshot `json:"state"`
}

type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the cache file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Exists reports whether the cache file is present.
func (s *JSONStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Init creates an empty cache. It fails if one already exists.
func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if s.Exists() {
		return fmt.Errorf("%w at %s", ErrAlreadyInitialized, s.path)
	}
	return s.Save(models.NewSnapshot())
}

func (s *JSONStore) Load() (models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Snapshot{}, ErrNotInitialized
		}
		return models.Snapshot{}, fmt.Errorf("failed to read storage: %w", err)
	}
	return Decode(data)
}

// Decode parses a cache document, rejecting versions this build cannot read.
func Decode(data []byte) (models.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > constants.StateVersion {
		return models.Snapshot{}, fmt.Errorf("%w (version %d, supported %d)", ErrVersionTooNew, doc.Version, constants.StateVersion)
	}
	// Clone turns absent collections into empty ones.
	return doc.State.Clone(), nil
}

// Save writes snap atomically.
func (s *JSONStore) Save(snap models.Snapshot) error {
	data, err := Encode(snap, time.Now())
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// Encode renders snap as a versioned cache document.
func Encode(snap models.Snapshot, savedAt time.Time) ([]byte, error) {
	doc := Document{Version: constants.StateVersion, SavedAt: savedAt.UTC(), State: snap.Clone()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize storage: %w", err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
