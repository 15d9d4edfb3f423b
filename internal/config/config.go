// Package config loads daylog settings from a YAML file, a .env file and
// DAYLOG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/daylog/internal/constants"
)

// BackendConfig selects the remote provider.
type BackendConfig struct {
	// Driver is one of none, memory, sqlite or postgres.
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is the SQLite path or PostgreSQL connection string. PostgreSQL
	// strings must not embed a password.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

type SessionConfig struct {
	// JWTSecret verifies session tokens. Empty means tokens are only decoded.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

type AutosaveConfig struct {
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`
}

type RolloverConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

type DispatchConfig struct {
	Rate  float64 `mapstructure:"rate" yaml:"rate"`
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

type StoreConfig struct {
	RollbackOnFailure bool `mapstructure:"rollback_on_failure" yaml:"rollback_on_failure"`
}

type BackupConfig struct {
	Max int `mapstructure:"max" yaml:"max"`
}

// Config is the top-level application configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir" yaml:"data_dir"`
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Autosave AutosaveConfig `mapstructure:"autosave" yaml:"autosave"`
	Rollover RolloverConfig `mapstructure:"rollover" yaml:"rollover"`
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`

	// Path is the file the config was read from.
	Path string `mapstructure:"-" yaml:"-"`
}

var drivers = []string{constants.DriverNone, constants.DriverMemory, constants.DriverSQLite, constants.DriverPostgres}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("backend.driver", constants.DriverNone)
	v.SetDefault("backend.dsn", "")
	v.SetDefault("session.jwt_secret", "")
	v.SetDefault("autosave.delay", constants.DefaultAutosaveDelay)
	v.SetDefault("rollover.interval", constants.DefaultRolloverInterval)
	v.SetDefault("dispatch.rate", constants.DefaultDispatchRate)
	v.SetDefault("dispatch.burst", constants.DefaultDispatchBurst)
	v.SetDefault("store.rollback_on_failure", false)
	v.SetDefault("backup.max", constants.MaxBackups)
}

// Load reads configuration from the YAML file at path. A missing file is
// not an error: defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.DataDir = ExpandPath(cfg.DataDir)
	cfg.Backend.Driver = strings.ToLower(strings.TrimSpace(cfg.Backend.Driver))
	if cfg.Backend.Driver == constants.DriverSQLite {
		cfg.Backend.DSN = ExpandPath(cfg.Backend.DSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotenv loads variables from a .env file without overriding ones
// already set. A missing file is ignored.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	valid := false
	for _, d := range drivers {
		if c.Backend.Driver == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("backend.driver must be one of %s, got %q", strings.Join(drivers, ", "), c.Backend.Driver)
	}
	if c.Autosave.Delay <= 0 {
		return fmt.Errorf("autosave.delay must be positive, got %s", c.Autosave.Delay)
	}
	if c.Rollover.Interval <= 0 {
		return fmt.Errorf("rollover.interval must be positive, got %s", c.Rollover.Interval)
	}
	if c.Dispatch.Rate < 0 || c.Dispatch.Burst < 0 {
		return fmt.Errorf("dispatch.rate and dispatch.burst cannot be negative")
	}
	if c.Backup.Max < 1 {
		return fmt.Errorf("backup.max must be at least 1, got %d", c.Backup.Max)
	}
	return nil
}

// StatePath returns the location of the local state cache.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, constants.StateFileName)
}

// LockPath returns the location of the process lockfile.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, constants.LockFileName)
}

// Save writes cfg as YAML to path, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("data_dir", cfg.DataDir)
	v.Set("backend", map[string]any{"driver": cfg.Backend.Driver, "dsn": cfg.Backend.DSN})
	v.Set("autosave", map[string]any{"delay": cfg.Autosave.Delay.String()})
	v.Set("rollover", map[string]any{"interval": cfg.Rollover.Interval.String()})
	v.Set("dispatch", map[string]any{"rate": cfg.Dispatch.Rate, "burst": cfg.Dispatch.Burst})
	v.Set("store", map[string]any{"rollback_on_failure": cfg.Store.RollbackOnFailure})
	v.Set("backup", map[string]any{"max": cfg.Backup.Max})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
