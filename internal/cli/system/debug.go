package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/daylog/internal/cli"
)

type DebugCmd struct {
	Paths *DebugPathsCmd `cmd:"" help:"Show data, state, lock and backup paths."`
	Dump  *DebugDumpCmd  `cmd:"" help:"Dump tracked state as JSON."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	output := map[string]string{
		"config":  ctx.Config.Path,
		"dataDir": ctx.Config.DataDir,
		"state":   ctx.Cache.Path(),
		"lock":    ctx.Config.LockPath(),
		"backups": ctx.BackupManager().GetBackupDir(),
		"backend": ctx.Config.Backend.Driver,
	}
	return printJSON(output)
}

type DebugDumpCmd struct {
	Section string `arg:"" optional:"" help:"Only dump one section." enum:"all,habits,todos,achievements,journal,metrics" default:"all"`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	snap := st.Snapshot()

	switch cmd.Section {
	case "habits":
		return printJSON(snap.Habits)
	case "todos":
		return printJSON(snap.Todos)
	case "achievements":
		return printJSON(snap.Achievements)
	case "journal":
		return printJSON(snap.Journal)
	case "metrics":
		return printJSON(snap.Metrics)
	}

	uid, online := st.UserID()
	return printJSON(map[string]any{
		"online":  online,
		"userId":  uid,
		"pending": st.Pending(),
		"state":   snap,
	})
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
