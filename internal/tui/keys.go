package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Home          key.Binding
	End           key.Binding
	Open          key.Binding
	OpenPreferred key.Binding
	Archive       key.Binding
	ToggleArchive key.Binding
	Restore       key.Binding
	Drag          key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
	Quit          key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home", "first entry"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end", "last entry"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open entry"),
	),
	OpenPreferred: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open preferred file"),
	),
	Archive: key.NewBinding(
		key.WithKeys("delete", "x"),
		key.WithHelp("del", "archive entry"),
	),
	ToggleArchive: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle archive"),
	),
	Restore: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restore entry"),
	),
	Drag: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "drag entry"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "drop here"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap for the entry list.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Archive, k.ToggleArchive, k.Drag, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.Open, k.OpenPreferred, k.Archive, k.Restore},
		{k.ToggleArchive, k.Drag, k.Cancel, k.Quit},
	}
}
