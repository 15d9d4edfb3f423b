package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg.DataDir = dir
	cfg.Autosave.Delay = time.Hour
	return cfg
}

// newContext returns a context over cfg that is closed when the test ends.
func newContext(t *testing.T, cfg *config.Config) *cli.Context {
	t.Helper()
	ctx := cli.NewContext(cfg)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func setupContext(t *testing.T) *cli.Context {
	t.Helper()
	ctx := newContext(t, testConfig(t))
	if err := ctx.Cache.Init(); err != nil {
		t.Fatalf("failed to init cache: %v", err)
	}
	return ctx
}
