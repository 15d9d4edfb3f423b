package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/scheduler"
	"github.com/julianstephens/daylog/internal/store"
	"github.com/julianstephens/daylog/internal/tui/components/habits"
	"github.com/julianstephens/daylog/internal/tui/components/journal"
	"github.com/julianstephens/daylog/internal/tui/components/todos"
	"github.com/julianstephens/daylog/internal/utils"
)

type SessionState int

// The first three states are the tabs, in display order.
const (
	StateHabits SessionState = iota
	StateJournal
	StateTodos
	StateAddHabit
	StateAddTodo
	StateConfirmDelete
)

const tabCount = 3

var tabTitles = []string{"Habits", "Journal", "Todos"}

type HabitFormModel struct {
	Name      string
	Category  string
	ThisMonth bool
}

type TodoFormModel struct {
	Text string
	Type models.TodoType
}

type deleteTarget struct {
	todo  bool
	id    string
	label string
}

type Options struct {
	AutosaveDelay    time.Duration
	RolloverInterval time.Duration
	Now              func() time.Time
}

type Model struct {
	store    *store.Store
	saver    *scheduler.Debouncer
	rollover *scheduler.Rollover
	now      func() time.Time

	state    SessionState
	tab      SessionState
	keys     KeyMap
	help     help.Model
	habits   habits.Model
	journal  journal.Model
	todos    todos.Model
	form     *huh.Form
	habitFrm *HabitFormModel
	todoFrm  *TodoFormModel
	deleting *deleteTarget

	// date is the day being viewed; today is the last day the rollover
	// check observed.
	date   string
	today  string
	status string

	quitting bool
	width    int
	height   int
}

func NewModel(st *store.Store, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	roll := scheduler.NewRollover(opts.RolloverInterval, opts.Now)
	saver := scheduler.NewDebouncer(opts.AutosaveDelay, func(date, content string) {
		if err := st.SetJournal(date, content); err != nil {
			logger.Error("Journal autosave failed", "date", date, "error", err)
		}
	})

	m := Model{
		store:    st,
		saver:    saver,
		rollover: roll,
		now:      opts.Now,
		state:    StateHabits,
		tab:      StateHabits,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		habits:   habits.New(0, 0),
		journal:  journal.New(0, 0),
		todos:    todos.New(0, 0),
		today:    roll.Today(),
	}
	m.date = m.today
	m.loadJournal()
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Date returns the day being viewed.
func (m Model) Date() string {
	return m.date
}

// Close saves any journal text still waiting on the autosave delay.
func (m Model) Close() {
	m.saver.Flush()
	m.saver.Stop()
}

func (m Model) ShortHelp() []key.Binding {
	if m.journal.Focused() {
		return []key.Binding{m.keys.Done}
	}
	keys := []key.Binding{m.keys.Tab, m.keys.PrevDay, m.keys.NextDay}
	if m.tab == StateJournal {
		keys = append(keys, m.keys.Edit)
	}
	return append(keys, m.keys.Quit, m.keys.Help)
}

func (m Model) FullHelp() [][]key.Binding {
	var actions []key.Binding
	switch m.tab {
	case StateHabits:
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Toggle, hk.Add, hk.Delete}
	case StateTodos:
		tk := todos.DefaultKeyMap()
		actions = []key.Binding{tk.Toggle, tk.Add, tk.Delete}
	case StateJournal:
		actions = []key.Binding{m.keys.Edit, m.keys.Done}
	}
	return append(m.keys.FullHelp(), actions)
}

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.rollover.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh re-reads the store into every list.
func (m *Model) refresh() {
	snap := m.store.Snapshot()
	m.habits.SetItems(habits.Items(snap.Habits, m.date, m.now()))
	m.todos.SetTodos(snap.Todos)
}

func (m *Model) loadJournal() {
	content, _ := m.store.Journal(m.date)
	m.journal.SetContent(m.date, content)
}

// setDate moves the view to date, saving any unsaved journal text first.
func (m *Model) setDate(date string) {
	if date == m.date {
		return
	}
	m.saver.Flush()
	m.journal.Blur()
	m.date = date
	m.loadJournal()
	m.refresh()
}

func (m *Model) shiftDate(days int) {
	t, err := utils.ParseDateKey(m.date)
	if err != nil {
		return
	}
	m.setDate(utils.FormatISODate(t.AddDate(0, 0, days)))
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) resize() {
	// Tabs, header, status and help lines plus the doc padding.
	h := max(m.height-9, 3)
	w := max(m.width-4, 10)
	m.habits.SetSize(w, h)
	m.journal.SetSize(w, h)
	m.todos.SetSize(w, h)
	m.help.Width = m.width
}

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Category").
				Description("Optional").
				Value(&fm.Category),
			huh.NewConfirm().
				Title("Only track it this month?").
				Value(&fm.ThisMonth),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewTodoForm(fm *TodoFormModel) *huh.Form {
	opts := make([]huh.Option[models.TodoType], len(models.TodoTypes))
	for i, t := range models.TodoTypes {
		opts[i] = huh.NewOption(string(t), t)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Todo").
				Value(&fm.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("todo text cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.TodoType]().
				Title("Type").
				Options(opts...).
				Value(&fm.Type),
		),
	).WithTheme(huh.ThemeDracula())
}
