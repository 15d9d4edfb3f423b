package main

import (
	"github.com/alecthomas/kong"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/cli/backups"
	"github.com/julianstephens/daylog/internal/cli/habits"
	"github.com/julianstephens/daylog/internal/cli/journal"
	"github.com/julianstephens/daylog/internal/cli/system"
	"github.com/julianstephens/daylog/internal/cli/todos"
	"github.com/julianstephens/daylog/internal/config"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}" env:"DAYLOG_CONFIG"`
	DataDir string `help:"Override the data directory from the config file." type:"path"`
	Verbose bool   `short:"v" help:"Log debug output to stderr."`

	Init        system.InitCmd         `cmd:"" help:"Initialize daylog storage."`
	Tui         system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit       habits.HabitCmd        `cmd:"" help:"Manage habits and completions."`
	Progress    habits.ProgressCmd     `cmd:"" help:"Show monthly and yearly habit progress."`
	Todo        todos.TodoCmd          `cmd:"" help:"Manage todos."`
	Journal     journal.JournalCmd     `cmd:"" help:"Write and read journal entries."`
	Metric      journal.MetricCmd      `cmd:"" help:"Record daily metrics such as mood or sleep."`
	Achievement journal.AchievementCmd `cmd:"" help:"Manage monthly achievements."`
	Reset       system.ResetCmd        `cmd:"" help:"Delete data for a month or everything."`
	Import      system.ImportCmd       `cmd:"" help:"Merge habits, todos and journal entries from a file."`
	Export      system.ExportCmd       `cmd:"" help:"Write a full snapshot as JSON."`
	Restore     system.RestoreCmd      `cmd:"" help:"Replace all data with an exported snapshot."`
	Backup      backups.BackupCmd      `cmd:"" help:"Manage local backups."`
	Session     system.SessionCmd      `cmd:"" help:"Sign in to sync with the remote backend."`
	Keyring     system.KeyringCmd      `cmd:"" help:"Manage credentials in the OS keyring."`
	Doctor      system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Debug       system.DebugCmd        `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	// Loaded first so .env values can fill flags bound to environment variables.
	if err := config.LoadDotenv(".env"); err != nil {
		errors.Fatal(err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker, journal and todo list for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.DataDir != "" {
		cfg.DataDir = CLI.DataDir
	}

	if err := logger.Init(logger.Config{Debug: CLI.Verbose, DataDir: cfg.DataDir}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "data_dir", cfg.DataDir, "driver", cfg.Backend.Driver)

	appCtx := cli.NewContext(cfg)
	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	errors.Fatal(err)
}
