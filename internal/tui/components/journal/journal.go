package journal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	editingStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205"))
)

// ChangedMsg is emitted whenever an edit changes the entry text.
type ChangedMsg struct {
	Date    string
	Content string
}

// Model shows one day's entry in a read-only viewport and switches to a
// textarea while focused.
type Model struct {
	input    textarea.Model
	viewport viewport.Model
	date     string
	width    int
	height   int
}

func New(width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "What happened today?"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	m := Model{
		input:    ta,
		viewport: viewport.New(width, height),
	}
	m.SetSize(width, height)
	return m
}

// SetContent loads the entry for date, discarding whatever was being edited.
func (m *Model) SetContent(date, content string) {
	m.date = date
	m.input.SetValue(content)
	m.render()
}

func (m Model) Date() string {
	return m.date
}

func (m Model) Value() string {
	return m.input.Value()
}

func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Blur() {
	m.input.Blur()
	m.render()
}

func (m Model) Focused() bool {
	return m.input.Focused()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.input.Focused() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		date := m.date
		changed := func() tea.Msg { return ChangedMsg{Date: date, Content: after} }
		return m, tea.Batch(cmd, changed)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.input.Focused() {
		return editingStyle.Render(m.input.View())
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Border takes two cells each way.
	m.input.SetWidth(max(width-2, 10))
	m.input.SetHeight(max(height-2, 3))
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) render() {
	content := m.input.Value()
	if strings.TrimSpace(content) == "" {
		m.viewport.SetContent(emptyStyle.Render("No entry for this day. Press 'i' to write one."))
		return
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.width).Render(content))
}
