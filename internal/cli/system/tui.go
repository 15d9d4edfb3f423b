package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	model := tui.NewModel(st, tui.Options{
		AutosaveDelay:    ctx.Config.Autosave.Delay,
		RolloverInterval: ctx.Config.Rollover.Interval,
		Now:              ctx.Now,
	})
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
