package constants

import "time"

const (
	AppName            = "daylog"
	Version            = "v0.1.0"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session-token"
	DefaultConfigPath  = "~/.config/daylog/config.yaml"
	DefaultDataDir     = "~/.config/daylog"
	EnvPrefix          = "DAYLOG"
	EnvDBConnection    = "DAYLOG_DB_CONNECTION"

	// DateFormat is the canonical date-key format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the month-key format (YYYY-MM)
	MonthFormat = "2006-01"

	// Local cache
	StateFileName = "state.json"
	StateVersion  = 1
	LockFileName  = "daylog.lock"
	LogDirName    = "logs"
	LogFileName   = "daylog.log"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "daylog-"
	BackupFileSuffix = ".json"

	// Scheduling defaults
	DefaultAutosaveDelay    = time.Second
	DefaultRolloverInterval = time.Minute

	// Remote dispatch defaults
	DefaultDispatchRate  = 20
	DefaultDispatchBurst = 10
	DispatchTimeout      = 30 * time.Second

	// Backend drivers
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
