package journal

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

type JournalCmd struct {
	Write JournalWriteCmd `cmd:"" help:"Write the journal entry for a day."`
	Show  JournalShowCmd  `cmd:"" help:"Show journal entries."`
}

type JournalWriteCmd struct {
	Text   []string `arg:"" optional:"" help:"Entry text. Read from stdin when omitted."`
	Date   string   `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
	Append bool     `help:"Append to the existing entry instead of replacing it."`

	// Stdin is read when no text is given. Tests replace it.
	Stdin io.Reader `kong:"-"`
}

func (c *JournalWriteCmd) Run(ctx *cli.Context) error {
	date, err := utils.ResolveDate(c.Date, ctx.Now())
	if err != nil {
		return err
	}

	text := strings.Join(c.Text, " ")
	if len(c.Text) == 0 {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read entry from stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	if c.Append {
		if prev, ok := st.Journal(date); ok {
			text = prev + "\n" + text
		}
	}
	if err := st.SetJournal(date, text); err != nil {
		return err
	}

	if models.IsBlank(text) {
		fmt.Printf("✓ Cleared journal entry for %s\n", date)
	} else {
		fmt.Printf("✓ Saved journal entry for %s\n", date)
	}
	return nil
}

type JournalShowCmd struct {
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
	Month string `help:"Show every entry in a month (YYYY-MM) instead of one day." default:""`
}

func (c *JournalShowCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	if c.Month == "" {
		date, err := utils.ResolveDate(c.Date, now)
		if err != nil {
			return err
		}
		content, ok := st.Journal(date)
		if !ok {
			fmt.Printf("No journal entry for %s.\n", date)
			return nil
		}
		fmt.Println(cli.TitleStyle.Render(date))
		fmt.Println(content)
		return nil
	}

	month, err := utils.ResolveMonth(c.Month, now)
	if err != nil {
		return err
	}
	snap := st.Snapshot()
	dates := slices.DeleteFunc(snap.JournalDates(), func(d string) bool { return !utils.InMonth(d, month) })
	if len(dates) == 0 {
		fmt.Printf("No journal entries for %s.\n", month)
		return nil
	}
	for i, d := range dates {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(cli.TitleStyle.Render(d))
		fmt.Println(snap.Journal[d])
	}
	return nil
}
