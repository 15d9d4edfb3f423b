// Package lock keeps a second daylog process from writing the same data
// directory.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/logger"
)

var ErrLocked = errors.New("another daylog process is using this data directory")

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Lock is a held pid lockfile.
type Lock struct {
	path string
	pid  int
}

// Acquire takes the lockfile at path. A lock left by a process that has
// exited, or whose pid now belongs to something other than daylog, is stale
// and replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	pid := getpidFunc()
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(pid))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, alive := holder(path)
		if alive && owner != pid {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, owner)
		}
		logger.Debug("Replacing stale lockfile", "path", path, "pid", owner)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: lockfile keeps reappearing", ErrLocked)
}

// holder returns the pid recorded in the lockfile and whether that pid is
// a running daylog process.
func holder(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false
	}
	return pid, strings.HasPrefix(process.Executable(), constants.AppName)
}

// Path returns the lockfile location.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if strings.TrimSpace(string(content)) != strconv.Itoa(l.pid) {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
