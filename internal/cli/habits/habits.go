package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/daylog/internal/analytics"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Remove HabitRemoveCmd `cmd:"" help:"Remove a habit and its history."`
	List   HabitListCmd   `cmd:"" help:"List habits active in a month."`
	Stats  HabitStatsCmd  `cmd:"" help:"Show streaks per habit."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Optional category." default:""`
	Month    string `help:"Scope the habit to a month (YYYY-MM or 'current'). Global when omitted." default:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	month := c.Month
	if strings.EqualFold(month, "current") {
		month = utils.MonthKey(ctx.Now())
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := st.AddHabit(c.Name, c.Category, month)
	if err != nil {
		return err
	}

	scope := "every month"
	if month != "" {
		scope = month
	}
	fmt.Printf("✓ Added habit %q (%s) [%s]\n", models.NormalizeName(c.Name), scope, cli.ShortID(id))
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	date, err := utils.ResolveDate(c.Date, ctx.Now())
	if err != nil {
		return err
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st.Snapshot().Habits, c.Habit)
	if err != nil {
		return err
	}
	done, err := st.ToggleHabit(h.ID, date)
	if err != nil {
		return err
	}

	if done {
		fmt.Printf("✓ Marked %q done for %s\n", h.Name, date)
	} else {
		fmt.Printf("Unmarked %q for %s\n", h.Name, date)
	}
	return nil
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitRemoveCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st.Snapshot().Habits, c.Habit)
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(
		fmt.Sprintf("Remove habit %q?", h.Name),
		fmt.Sprintf("Its %d completion(s) are removed with it.", len(h.CompletedDates)),
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := st.RemoveHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Removed habit %q\n", h.Name)
	return nil
}

type HabitListCmd struct {
	Month string `help:"Month in YYYY-MM format (default: current month)." default:""`
	Date  string `help:"Day whose completion is shown (default: today)." default:"today"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	date, err := utils.ResolveDate(c.Date, now)
	if err != nil {
		return err
	}
	month := c.Month
	if month == "" {
		month = date[:7]
	}
	if month, err = utils.ResolveMonth(month, now); err != nil {
		return err
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	habits := models.ActiveHabits(st.Snapshot().Habits, month)
	if len(habits) == 0 {
		fmt.Printf("No habits for %s.\n", month)
		return nil
	}

	start, err := utils.ParseMonthKey(month)
	if err != nil {
		return err
	}
	days := utils.DaysInMonth(start)
	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		scope := "global"
		if !h.IsGlobal() {
			scope = h.Month
		}
		rows = append(rows, []string{
			cli.ShortID(h.ID),
			cli.Checkbox(h.IsCompleted(date)),
			h.Name,
			h.Category,
			scope,
			fmt.Sprintf("%d/%d", analytics.MonthCompletions(h, month), days),
		})
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Habits for %s", month)))
	fmt.Println(cli.Table([]string{"ID", date, "Name", "Category", "Scope", "Done"}, rows))
	return nil
}

type HabitStatsCmd struct {
	Habit string `arg:"" optional:"" help:"Limit to one habit (name or id)."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	habits := st.Snapshot().Habits
	if c.Habit != "" {
		h, err := cli.FindHabit(habits, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	now := ctx.Now()
	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		s := analytics.ComputeStreaks(h.CompletedDates, now)
		rows = append(rows, []string{
			h.Name,
			fmt.Sprintf("%d", s.Current),
			fmt.Sprintf("%d", s.Longest),
			fmt.Sprintf("%d", s.Total),
		})
	}
	fmt.Println(cli.Table([]string{"Habit", "Current", "Longest", "Total"}, rows))
	return nil
}

type ProgressCmd struct {
	Date string `help:"Reference date (default: today)." default:"today"`
}

func (c *ProgressCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	date, err := utils.ResolveDate(c.Date, now)
	if err != nil {
		return err
	}
	ref, err := utils.ParseDateKey(date)
	if err != nil {
		return err
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	p := analytics.ComputeProgress(st.Snapshot().Habits, ref, now)

	fmt.Printf("%-8s %s  %s\n", "Month", cli.ProgressBar(p.Monthly, 30), utils.MonthKey(ref))
	fmt.Printf("%-8s %s  %d\n", "Year", cli.ProgressBar(p.Yearly, 30), ref.Year())
	return nil
}
