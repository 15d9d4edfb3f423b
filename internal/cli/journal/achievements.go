package journal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

type AchievementCmd struct {
	Add    AchievementAddCmd    `cmd:"" help:"Record an achievement."`
	Remove AchievementRemoveCmd `cmd:"" help:"Remove an achievement."`
	List   AchievementListCmd   `cmd:"" help:"List achievements."`
}

type AchievementAddCmd struct {
	Text  string `arg:"" help:"What you achieved."`
	Month string `help:"Month in YYYY-MM format (default: current month)." default:""`
}

func (c *AchievementAddCmd) Run(ctx *cli.Context) error {
	month, err := utils.ResolveMonth(c.Month, ctx.Now())
	if err != nil {
		return err
	}
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := st.AddAchievement(month, c.Text)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added achievement for %s [%s]\n", month, cli.ShortID(id))
	return nil
}

type AchievementRemoveCmd struct {
	Achievement string `arg:"" help:"Achievement text or id."`
}

func (c *AchievementRemoveCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	a, err := cli.FindAchievement(st.Snapshot().Achievements, c.Achievement)
	if err != nil {
		return err
	}
	if err := st.RemoveAchievement(a.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Removed achievement %q\n", a.Text)
	return nil
}

type AchievementListCmd struct {
	Month string `help:"Month in YYYY-MM format (default: current month)." default:""`
	All   bool   `help:"List every month."`
}

func (c *AchievementListCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	achievements := st.Snapshot().Achievements

	if !c.All {
		month, err := utils.ResolveMonth(c.Month, ctx.Now())
		if err != nil {
			return err
		}
		achievements = slices.DeleteFunc(achievements, func(a models.Achievement) bool { return a.Month != month })
		if len(achievements) == 0 {
			fmt.Printf("No achievements for %s.\n", month)
			return nil
		}
	}
	if len(achievements) == 0 {
		fmt.Println("No achievements found.")
		return nil
	}

	slices.SortStableFunc(achievements, func(a, b models.Achievement) int { return strings.Compare(a.Month, b.Month) })
	current := ""
	for _, a := range achievements {
		if a.Month != current {
			current = a.Month
			fmt.Println(cli.TitleStyle.Render(current))
		}
		fmt.Printf("  ★ %s %s\n", a.Text, cli.MutedStyle.Render(cli.ShortID(a.ID)))
	}
	return nil
}
