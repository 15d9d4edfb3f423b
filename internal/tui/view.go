package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daylog/internal/analytics"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/utils"
)

const barWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit, StateAddTodo:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		switch m.tab {
		case StateHabits:
			content = m.habits.View()
		case StateJournal:
			content = m.journal.View()
		case StateTodos:
			content = m.todos.View()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewHeader(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeader() string {
	ref, err := utils.ParseDateKey(m.date)
	if err != nil {
		return ""
	}
	title := dateStyle.Render(ref.Format("Monday, January 2, 2006"))
	if m.date == m.today {
		title += mutedStyle.Render("  today")
	}

	sync := mutedStyle.Render("local only")
	if m.store.Online() {
		sync = mutedStyle.Render("synced")
		if n := m.store.Pending(); n > 0 {
			sync = warningStyle.Render(fmt.Sprintf("%d pending", n))
		}
	}

	p := analytics.ComputeProgress(m.store.Snapshot().Habits, ref, m.now())
	bars := fmt.Sprintf("Month %s   Year %s",
		cli.ProgressBar(p.Monthly, barWidth),
		cli.ProgressBar(p.Yearly, barWidth),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		" "+title+"  "+sync,
		" "+bars,
	)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	return " " + mutedStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	what := "habit"
	if m.deleting != nil && m.deleting.todo {
		what = "todo"
	}
	label := ""
	if m.deleting != nil {
		label = m.deleting.label
	}
	return lipgloss.Place(max(m.width-4, 0), max(m.height-9, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s %q?", what, label)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
