package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/tui/components/habits"
	"github.com/julianstephens/daylog/internal/tui/components/journal"
	"github.com/julianstephens/daylog/internal/tui/components/todos"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		return m, m.handleTick()

	case journal.ChangedMsg:
		m.saver.Push(msg.Date, msg.Content)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m, m.handleAddHabitState(msg)
	case StateAddTodo:
		return m, m.handleAddTodoState(msg)
	case StateConfirmDelete:
		return m, m.handleConfirmDeleteState(msg)
	}

	if handled, cmd := m.handleComponentMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := m.handleKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case StateHabits:
		m.habits, cmd = m.habits.Update(msg)
	case StateJournal:
		m.journal, cmd = m.journal.Update(msg)
	case StateTodos:
		m.todos, cmd = m.todos.Update(msg)
	}
	return m, cmd
}

// handleTick follows the calendar: a view left on today moves to the new
// day at midnight, a view of any other day stays put.
func (m *Model) handleTick() tea.Cmd {
	prev := m.today
	if today, changed := m.rollover.Check(); changed {
		m.today = today
		if m.date == prev {
			m.setDate(today)
		}
	}
	m.refresh()
	return m.tick()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.journal.Focused() {
		switch {
		case msg.Type == tea.KeyCtrlC:
			return true, m.quit()
		case key.Matches(msg, m.keys.Done):
			m.saver.Flush()
			m.journal.Blur()
			return true, nil
		}
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, m.quit()
	case key.Matches(msg, m.keys.Tab):
		m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.ShiftTab):
		m.switchTab((m.tab - 1 + tabCount) % tabCount)
	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDate(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.shiftDate(1)
	case key.Matches(msg, m.keys.Today):
		m.setDate(m.today)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case m.tab == StateJournal && key.Matches(msg, m.keys.Edit):
		return true, m.journal.Focus()
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) switchTab(tab SessionState) {
	m.tab = tab
	m.state = tab
	m.status = ""
}

func (m *Model) quit() tea.Cmd {
	m.saver.Flush()
	m.quitting = true
	return tea.Quit
}

func (m *Model) handleComponentMessages(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitFrm = &HabitFormModel{}
		m.form = NewHabitForm(m.habitFrm)
		m.state = StateAddHabit
		return true, m.form.Init()

	case habits.ToggleHabitMsg:
		done, err := m.store.ToggleHabit(msg.ID, m.date)
		if err != nil {
			m.setStatus("✗ %v", err)
			return true, nil
		}
		if done {
			m.setStatus("✓ Marked done for %s", m.date)
		} else {
			m.setStatus("○ Unmarked for %s", m.date)
		}
		m.refresh()
		return true, nil

	case habits.DeleteHabitMsg:
		m.deleting = &deleteTarget{id: msg.ID, label: msg.Name}
		m.state = StateConfirmDelete
		return true, nil

	case todos.AddTodoMsg:
		m.todoFrm = &TodoFormModel{Type: models.TodoDaily}
		m.form = NewTodoForm(m.todoFrm)
		m.state = StateAddTodo
		return true, m.form.Init()

	case todos.ToggleTodoMsg:
		if _, err := m.store.ToggleTodo(msg.ID); err != nil {
			m.setStatus("✗ %v", err)
			return true, nil
		}
		m.refresh()
		return true, nil

	case todos.DeleteTodoMsg:
		m.deleting = &deleteTarget{todo: true, id: msg.ID, label: msg.Text}
		m.state = StateConfirmDelete
		return true, nil
	}
	return false, nil
}

// updateForm advances the open form, returning its state after the update.
func (m *Model) updateForm(msg tea.Msg) (huh.FormState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return huh.StateAborted, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m.form.State, cmd
}

func (m *Model) handleAddHabitState(msg tea.Msg) tea.Cmd {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		month := ""
		if m.habitFrm.ThisMonth {
			month = m.date[:7]
		}
		if _, err := m.store.AddHabit(m.habitFrm.Name, strings.TrimSpace(m.habitFrm.Category), month); err != nil {
			// Stay in the form so the user can fix the input or press esc.
			m.setStatus("✗ %v", err)
			m.form.State = huh.StateNormal
			return cmd
		}
		m.setStatus("✓ Added %s", models.NormalizeName(m.habitFrm.Name))
		m.refresh()
		m.state = m.tab
	case huh.StateAborted:
		m.state = m.tab
	}
	return cmd
}

func (m *Model) handleAddTodoState(msg tea.Msg) tea.Cmd {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		if _, err := m.store.AddTodo(m.todoFrm.Text, m.todoFrm.Type); err != nil {
			m.setStatus("✗ %v", err)
			m.form.State = huh.StateNormal
			return cmd
		}
		m.setStatus("✓ Added %s todo", m.todoFrm.Type)
		m.refresh()
		m.state = m.tab
	case huh.StateAborted:
		m.state = m.tab
	}
	return cmd
}

func (m *Model) handleConfirmDeleteState(msg tea.Msg) tea.Cmd {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch msgKey.String() {
	case "y", "Y":
		target := m.deleting
		var err error
		if target.todo {
			err = m.store.RemoveTodo(target.id)
		} else {
			err = m.store.RemoveHabit(target.id)
		}
		if err != nil {
			m.setStatus("✗ %v", err)
		} else {
			m.setStatus("✓ Deleted %s", target.label)
		}
		m.refresh()
	case "n", "N", "esc", "q":
	default:
		return nil
	}
	m.deleting = nil
	m.state = m.tab
	return nil
}
