package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/julianstephens/daylog/internal/backup"
	"github.com/julianstephens/daylog/internal/config"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/keyring"
	"github.com/julianstephens/daylog/internal/lock"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/scheduler"
	"github.com/julianstephens/daylog/internal/session"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/store"
)

// RemoteDBFileName is the SQLite file used when the sqlite backend has no DSN.
const RemoteDBFileName = "remote.db"

const autosaveKey = "state"

// Context is shared by every command. The store is opened lazily so that
// commands like init and session never take the lock.
type Context struct {
	Config *config.Config
	Cache  *storage.JSONStore
	Now    func() time.Time

	// OpenRemote builds the backend provider. Tests replace it.
	OpenRemote func(cfg *config.Config) (remote.Provider, error)
	// LoadIdentity resolves the session. Tests replace it.
	LoadIdentity func(cfg *config.Config) session.Identity

	mu     sync.Mutex
	saveMu sync.Mutex
	store  *store.Store
	remote remote.Provider
	lock   *lock.Lock
	saver  *scheduler.Debouncer
}

// NewContext returns a context for cfg with the real backend and keyring.
func NewContext(cfg *config.Config) *Context {
	return &Context{
		Config:       cfg,
		Cache:        storage.NewJSONStore(cfg.StatePath()),
		Now:          time.Now,
		OpenRemote:   OpenRemote,
		LoadIdentity: LoadIdentity,
	}
}

// Open locks the data directory, loads the cached state and builds the
// store. Later calls return the same store.
func (c *Context) Open() (*store.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return c.store, nil
	}

	if !c.Cache.Exists() {
		return nil, storage.ErrNotInitialized
	}

	lk, err := lock.Acquire(c.Config.LockPath())
	if err != nil {
		return nil, err
	}

	snap, err := c.Cache.Load()
	if err != nil {
		_ = lk.Release()
		return nil, err
	}

	// The remote is optional: a broken backend leaves the store local-only.
	provider, err := c.OpenRemote(c.Config)
	if err != nil {
		logger.Warn("Remote backend unavailable, continuing local-only", "driver", c.Config.Backend.Driver, "error", err)
		fmt.Fprintf(os.Stderr, "⚠ Remote backend unavailable, changes are saved locally only: %v\n", err)
		provider = nil
	}

	var identity session.Identity = session.Anonymous()
	if provider != nil {
		identity = c.LoadIdentity(c.Config)
	}

	c.saver = scheduler.NewDebouncer(c.Config.Autosave.Delay, func(string, string) {
		if err := c.Save(); err != nil {
			logger.Warn("Autosave failed", "error", err)
		}
	})
	saver := c.saver
	c.store = store.New(snap, provider, identity, store.Options{
		RollbackOnFailure: c.Config.Store.RollbackOnFailure,
		OnChange:          func(models.Snapshot) { saver.Push(autosaveKey, "") },
		Now:               c.Now,
		Rate:              c.Config.Dispatch.Rate,
		Burst:             c.Config.Dispatch.Burst,
	})
	c.remote = provider
	c.lock = lk
	return c.store, nil
}

// Store returns the opened store, or nil before Open.
func (c *Context) Store() *store.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// Remote returns the opened provider, or nil when running local-only.
func (c *Context) Remote() remote.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote
}

// Save writes the current store state to the cache file.
func (c *Context) Save() error {
	st := c.Store()
	if st == nil {
		return nil
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if err := c.Cache.Save(st.Snapshot()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Close waits for in-flight remote writes, saves the cache and releases
// the lock. It is safe to call when the store was never opened.
func (c *Context) Close() error {
	st := c.Store()
	if st == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DispatchTimeout)
	defer cancel()
	if err := st.Wait(ctx); err != nil {
		logger.Warn("Gave up waiting for remote writes", "pending", st.Pending(), "error", err)
		fmt.Fprintf(os.Stderr, "⚠ %d remote write(s) did not finish; local state is saved\n", st.Pending())
	}
	if n := st.Failures(); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d remote write(s) failed, see the log for details\n", n)
	}

	c.saver.Stop()
	var errs []error
	if err := c.Save(); err != nil {
		errs = append(errs, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remote != nil {
		if err := c.remote.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close remote: %w", err))
		}
	}
	if c.lock != nil {
		if err := c.lock.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	c.store, c.remote, c.lock = nil, nil, nil
	return errors.Join(errs...)
}

// BackupManager returns a backup manager for the state file.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Config.StatePath(), c.Config.Backup.Max)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.Cache.Exists() {
		return
	}
	if _, err := c.BackupManager().CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// OpenRemote builds the provider selected by backend.driver. The none
// driver returns a nil provider.
func OpenRemote(cfg *config.Config) (remote.Provider, error) {
	switch cfg.Backend.Driver {
	case constants.DriverNone, "":
		return nil, nil
	case constants.DriverMemory:
		return remote.NewMemory()
	case constants.DriverSQLite:
		path := cfg.Backend.DSN
		if path == "" {
			path = filepath.Join(cfg.DataDir, RemoteDBFileName)
		}
		return remote.OpenSQLite(path)
	case constants.DriverPostgres:
		connStr, err := PostgresConnString(cfg)
		if err != nil {
			return nil, err
		}
		return remote.OpenPostgres(connStr)
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
	}
}

// PostgresConnString resolves the connection string from the config, then
// DAYLOG_DB_CONNECTION, then the OS keyring.
func PostgresConnString(cfg *config.Config) (string, error) {
	if cfg.Backend.DSN != "" {
		return cfg.Backend.DSN, nil
	}
	if s := os.Getenv(constants.EnvDBConnection); s != "" {
		return s, nil
	}
	s, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection string: set backend.dsn, %s or 'daylog keyring set'", constants.EnvDBConnection)
		}
		return "", err
	}
	return s, nil
}

// LoadIdentity reads the stored session. A missing or unusable session
// means local-only.
func LoadIdentity(cfg *config.Config) session.Identity {
	identity, err := session.Load([]byte(cfg.Session.JWTSecret))
	if err != nil {
		logger.Warn("Ignoring stored session", "error", err)
		fmt.Fprintf(os.Stderr, "⚠ Stored session is not usable (%v), running local-only\n", err)
	}
	return identity
}
