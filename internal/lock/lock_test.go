package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func mockProcesses(t *testing.T, self int, running map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpidFunc
	t.Cleanup(func() {
		findProcessFunc, getpidFunc = oldFind, oldPid
	})

	getpidFunc = func() int { return self }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := running[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func writeLockfile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestAcquireAndRelease(t *testing.T) {
	mockProcesses(t, 100, map[int]string{100: "daylog"})
	path := filepath.Join(t.TempDir(), "data", "daylog.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil || string(content) != "100" {
		t.Errorf("lockfile content = %q, %v; want 100", content, err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("lockfile still present after Release")
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release error = %v", err)
	}
}

func TestAcquireHeldByLiveDaylog(t *testing.T) {
	mockProcesses(t, 100, map[int]string{200: "daylog"})
	path := filepath.Join(t.TempDir(), "daylog.lock")
	writeLockfile(t, path, "200")

	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire error = %v, want ErrLocked", err)
	}
	if content, _ := os.ReadFile(path); string(content) != "200" {
		t.Errorf("lockfile overwritten: %q", content)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		running map[int]string
	}{
		{"dead process", "200", map[int]string{}},
		{"pid reused by another program", "200", map[int]string{200: "bash"}},
		{"garbage content", "not-a-pid", map[int]string{}},
		{"own pid", "100", map[int]string{100: "daylog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProcesses(t, 100, tt.running)
			path := filepath.Join(t.TempDir(), "daylog.lock")
			writeLockfile(t, path, tt.content)

			l, err := Acquire(path)
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			defer l.Release()

			if content, _ := os.ReadFile(path); string(content) != "100" {
				t.Errorf("lockfile content = %q, want 100", content)
			}
		})
	}
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	mockProcesses(t, 100, map[int]string{})
	path := filepath.Join(t.TempDir(), "daylog.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	// Another process took over after ours was judged stale.
	writeLockfile(t, path, "300")

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if content, _ := os.ReadFile(path); string(content) != "300" {
		t.Errorf("Release removed a lock it did not own: %q", content)
	}
}
