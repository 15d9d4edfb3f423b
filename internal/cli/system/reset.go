package system

import (
	"fmt"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/utils"
)

type ResetCmd struct {
	All   ResetAllCmd   `cmd:"" help:"Delete everything."`
	Month ResetMonthCmd `cmd:"" help:"Delete one month's achievements, journal, metrics and completions."`
}

type ResetAllCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetAllCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	desc := "A backup is taken first."
	if st.Online() {
		desc = "A local backup is taken first. The remote copy is deleted too."
	}
	ok, err := cli.Confirm("Delete all habits, todos, achievements, journal entries and metrics?", desc, c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Reset cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	st.ResetAll()
	fmt.Println("✓ All data deleted")
	return nil
}

type ResetMonthCmd struct {
	Month string `arg:"" optional:"" help:"Month in YYYY-MM format (default: current month)."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetMonthCmd) Run(ctx *cli.Context) error {
	month, err := utils.ResolveMonth(c.Month, ctx.Now())
	if err != nil {
		return err
	}
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(
		fmt.Sprintf("Reset %s?", month),
		"Achievements, journal entries, metrics and habit completions in this month are deleted. Habits themselves are kept.",
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Reset cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := st.ResetMonth(month); err != nil {
		return err
	}
	fmt.Printf("✓ Reset %s\n", month)
	return nil
}
