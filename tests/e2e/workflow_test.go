package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEndToEndWorkflow(t *testing.T) {
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	binDir := os.Getenv("DAYLOG_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join("..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "daylog")

	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it first with: go build -o bin/daylog ./cmd/daylog", cliPath)
	}

	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") || strings.HasPrefix(e, "DAYLOG_") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", tempDir),
		fmt.Sprintf("DAYLOG_CONFIG=%s", filepath.Join(tempDir, "daylog", "config.yaml")),
	)

	today := time.Now().Format("2006-01-02")

	t.Log("Initializing...")
	runCmd(t, cliPath, env, "", "init")

	t.Log("Tracking a habit...")
	runCmd(t, cliPath, env, "", "habit", "add", "Read", "--category", "mind")
	runCmd(t, cliPath, env, "", "habit", "toggle", "Read")
	if out := runCmd(t, cliPath, env, "", "habit", "stats"); !strings.Contains(out, "Read") {
		t.Errorf("habit stats output missing habit:\n%s", out)
	}
	runCmd(t, cliPath, env, "", "progress")

	t.Log("Adding a todo and a journal entry...")
	runCmd(t, cliPath, env, "", "todo", "add", "Pay rent", "--type", "monthly")
	runCmd(t, cliPath, env, "wrote the e2e test\n", "journal", "write")

	t.Log("Exporting...")
	exportPath := filepath.Join(tempDir, "export.json")
	runCmd(t, cliPath, env, "", "export", exportPath)

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var snap struct {
		Habits []struct {
			Name           string   `json:"name"`
			CompletedDates []string `json:"completedDates"`
		} `json:"habits"`
		Todos   []struct{ Text string } `json:"todos"`
		Journal map[string]string       `json:"journal"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if len(snap.Habits) != 1 || len(snap.Habits[0].CompletedDates) != 1 || snap.Habits[0].CompletedDates[0] != today {
		t.Errorf("Exported habits = %+v, want Read completed on %s", snap.Habits, today)
	}
	if len(snap.Todos) != 1 {
		t.Errorf("Exported todos = %+v, want 1", snap.Todos)
	}
	if got := strings.TrimSpace(snap.Journal[today]); got != "wrote the e2e test" {
		t.Errorf("Exported journal for %s = %q", today, got)
	}

	t.Log("Running doctor...")
	runCmd(t, cliPath, env, "", "doctor")
}

func runCmd(t *testing.T, path string, env []string, stdin string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
