package todos

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/models"
)

type AddTodoMsg struct{}

type ToggleTodoMsg struct {
	ID string
}

type DeleteTodoMsg struct {
	ID   string
	Text string
}

type Item struct {
	Todo models.Todo
}

func (i Item) Title() string {
	if i.Todo.Completed {
		return "✓ " + i.Todo.Text
	}
	return "○ " + i.Todo.Text
}

func (i Item) Description() string {
	return string(i.Todo.Type)
}

func (i Item) FilterValue() string { return i.Todo.Text }

type KeyMap struct {
	Toggle key.Binding
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Todos"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	// q and esc belong to the parent model.
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

// SetTodos replaces the list, ordered by type and then creation time.
func (m *Model) SetTodos(todos []models.Todo) {
	sorted := slices.Clone(todos)
	rank := func(t models.TodoType) int { return slices.Index(models.TodoTypes, t) }
	slices.SortStableFunc(sorted, func(a, b models.Todo) int {
		if c := cmp.Compare(rank(a.Type), rank(b.Type)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	items := make([]list.Item, len(sorted))
	for i, t := range sorted {
		items[i] = Item{Todo: t}
	}
	m.list.SetItems(items)
}

func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTodoMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleTodoMsg{ID: i.Todo.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteTodoMsg{ID: i.Todo.ID, Text: i.Todo.Text} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No todos.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
