package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Edit     key.Binding
	Done     key.Binding
	Help     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Quit, k.Help},
		{k.PrevDay, k.NextDay, k.Today},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←/[", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→/]", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Edit: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i", "write"),
		),
		Done: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop writing"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
