package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
)

// ProgressBar renders pct (0-100) as a bar of width cells followed by the
// percentage.
func ProgressBar(pct, width int) string {
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3d%%", pct)
}

// Checkbox renders a completion mark.
func Checkbox(done bool) string {
	if done {
		return DoneStyle.Render("[x]")
	}
	return "[ ]"
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// Confirm asks a yes/no question. assumeYes skips the prompt.
func Confirm(title, description string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
