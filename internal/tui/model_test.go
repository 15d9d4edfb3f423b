package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/store"
	"github.com/julianstephens/daylog/internal/tui/components/habits"
	"github.com/julianstephens/daylog/internal/tui/components/journal"
	"github.com/julianstephens/daylog/internal/tui/components/todos"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func setupModel(t *testing.T, delay time.Duration) (Model, *store.Store, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)}

	snap := models.NewSnapshot()
	snap.Habits = []models.Habit{
		{ID: "h1", Name: "Read", CompletedDates: []string{"2025-03-08", "2025-03-09"}},
		{ID: "h2", Name: "Run", Month: "2025-02"},
	}
	snap.Todos = []models.Todo{
		{ID: "t1", Text: "Pay rent", Type: models.TodoMonthly},
	}
	st := store.New(snap, nil, nil, store.Options{Now: clock.Now})

	m := NewModel(st, Options{
		AutosaveDelay:    delay,
		RolloverInterval: time.Minute,
		Now:              clock.Now,
	})
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), st, clock
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewModelStartsOnToday(t *testing.T) {
	m, _, _ := setupModel(t, time.Second)

	if m.Date() != "2025-03-10" {
		t.Errorf("Date() = %q, want 2025-03-10", m.Date())
	}
	view := m.View()
	if !strings.Contains(view, "Read") {
		t.Error("view should list the global habit")
	}
	if strings.Contains(view, "○ Run") {
		t.Error("view should not list a habit scoped to another month")
	}
	if !strings.Contains(view, "local only") {
		t.Error("header should show local-only mode")
	}
}

func TestToggleHabitUsesViewedDate(t *testing.T) {
	m, st, _ := setupModel(t, time.Second)

	m, _ = send(t, m, habits.ToggleHabitMsg{ID: "h1"})
	h, _ := st.Habit("h1")
	if !h.IsCompleted("2025-03-10") {
		t.Error("toggle should complete the habit for today")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Date() != "2025-03-08" {
		t.Fatalf("Date() = %q, want 2025-03-08", m.Date())
	}
	m, _ = send(t, m, habits.ToggleHabitMsg{ID: "h1"})
	h, _ = st.Habit("h1")
	if h.IsCompleted("2025-03-08") {
		t.Error("second toggle should clear the completion on the viewed date")
	}
	if !h.IsCompleted("2025-03-10") {
		t.Error("other dates should be untouched")
	}
	if !strings.Contains(m.status, "Unmarked") {
		t.Errorf("status = %q", m.status)
	}
}

func TestDayNavigation(t *testing.T) {
	m, _, _ := setupModel(t, time.Second)

	m, _ = send(t, m, keyRunes("]"))
	if m.Date() != "2025-03-11" {
		t.Errorf("after ] Date() = %q", m.Date())
	}
	for range 11 {
		m, _ = send(t, m, keyRunes("["))
	}
	if m.Date() != "2025-02-28" {
		t.Errorf("after [ x11 Date() = %q", m.Date())
	}
	if !strings.Contains(m.View(), "○ Run") {
		t.Error("February view should include the February habit")
	}

	m, _ = send(t, m, keyRunes("t"))
	if m.Date() != "2025-03-10" {
		t.Errorf("after t Date() = %q", m.Date())
	}
}

func TestRolloverFollowsToday(t *testing.T) {
	m, _, clock := setupModel(t, time.Second)

	clock.Set(time.Date(2025, 3, 11, 0, 0, 30, 0, time.Local))
	m, cmd := send(t, m, tickMsg(clock.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.Date() != "2025-03-11" {
		t.Errorf("view on today should follow rollover, got %q", m.Date())
	}

	m, _ = send(t, m, keyRunes("["))
	clock.Set(time.Date(2025, 3, 12, 0, 0, 30, 0, time.Local))
	m, _ = send(t, m, tickMsg(clock.Now()))
	if m.Date() != "2025-03-10" {
		t.Errorf("view on a past day should stay put, got %q", m.Date())
	}

	m, _ = send(t, m, keyRunes("t"))
	if m.Date() != "2025-03-12" {
		t.Errorf("t should jump to the new today, got %q", m.Date())
	}
}

func TestJournalAutosaveIsDebounced(t *testing.T) {
	m, st, _ := setupModel(t, 20*time.Millisecond)

	m, _ = send(t, m, journal.ChangedMsg{Date: "2025-03-10", Content: "h"})
	m, _ = send(t, m, journal.ChangedMsg{Date: "2025-03-10", Content: "hello"})
	if _, ok := st.Journal("2025-03-10"); ok {
		t.Error("journal should not be saved before the delay")
	}

	waitFor(t, func() bool {
		got, _ := st.Journal("2025-03-10")
		return got == "hello"
	})
	_ = m
}

func TestQuitFlushesJournal(t *testing.T) {
	m, st, _ := setupModel(t, time.Hour)

	m, _ = send(t, m, journal.ChangedMsg{Date: "2025-03-10", Content: "before bed"})
	m, cmd := send(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if got, _ := st.Journal("2025-03-10"); got != "before bed" {
		t.Errorf("journal = %q, want flushed on quit", got)
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestJournalEditorKeepsKeys(t *testing.T) {
	m, st, _ := setupModel(t, time.Hour)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != StateJournal {
		t.Fatalf("tab = %d, want journal", m.tab)
	}
	m, _ = send(t, m, keyRunes("i"))
	if !m.journal.Focused() {
		t.Fatal("i should focus the editor")
	}

	m, _ = send(t, m, keyRunes("q"))
	if m.quitting {
		t.Fatal("q inside the editor should be typed, not quit")
	}
	if m.journal.Value() != "q" {
		t.Errorf("editor value = %q", m.journal.Value())
	}

	m, _ = send(t, m, journal.ChangedMsg{Date: m.Date(), Content: m.journal.Value()})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.journal.Focused() {
		t.Error("esc should leave the editor")
	}
	if got, _ := st.Journal("2025-03-10"); got != "q" {
		t.Errorf("leaving the editor should save, got %q", got)
	}
}

func TestTabsCycle(t *testing.T) {
	m, _, _ := setupModel(t, time.Second)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != StateTodos {
		t.Errorf("shift+tab from habits = %d, want todos", m.tab)
	}
	if !strings.Contains(m.View(), "Pay rent") {
		t.Error("todos tab should list todos")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != StateHabits {
		t.Errorf("tab from todos = %d, want habits", m.tab)
	}
}

func TestConfirmDelete(t *testing.T) {
	m, st, _ := setupModel(t, time.Second)

	m, _ = send(t, m, habits.DeleteHabitMsg{ID: "h1", Name: "Read"})
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %d, want confirm", m.state)
	}
	m, _ = send(t, m, keyRunes("n"))
	if _, ok := st.Habit("h1"); !ok {
		t.Fatal("n should keep the habit")
	}
	if m.state != StateHabits {
		t.Errorf("state = %d after cancel", m.state)
	}

	m, _ = send(t, m, habits.DeleteHabitMsg{ID: "h1", Name: "Read"})
	m, _ = send(t, m, keyRunes("y"))
	if _, ok := st.Habit("h1"); ok {
		t.Error("y should remove the habit")
	}

	m, _ = send(t, m, todos.DeleteTodoMsg{ID: "t1", Text: "Pay rent"})
	_, _ = send(t, m, keyRunes("y"))
	if len(st.Snapshot().Todos) != 0 {
		t.Error("y should remove the todo")
	}
}

func TestToggleTodo(t *testing.T) {
	m, st, _ := setupModel(t, time.Second)

	_, _ = send(t, m, todos.ToggleTodoMsg{ID: "t1"})
	if !st.Snapshot().Todos[0].Completed {
		t.Error("todo should be completed")
	}
}

func TestAddFormEscAborts(t *testing.T) {
	m, st, _ := setupModel(t, time.Second)

	m, cmd := send(t, m, habits.AddHabitMsg{})
	if m.state != StateAddHabit || m.form == nil {
		t.Fatalf("state = %d, want add habit form", m.state)
	}
	_ = cmd
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateHabits {
		t.Errorf("esc should close the form, state = %d", m.state)
	}
	if got := len(st.Snapshot().Habits); got != 2 {
		t.Errorf("habits = %d, want unchanged", got)
	}
}
