package ui

import "github.com/charmbracelet/bubbles/key"

// quickSearches are offered under an empty search box.
var quickSearches = []string{"Marvel", "Action", "Comedy", "Horror", "Sci-Fi", "Drama"}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Next  key.Binding
	Prev  key.Binding
	Open  key.Binding
	Close key.Binding
	Retry key.Binding
	Quick key.Binding
	Debug key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Retry: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
		Quick: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6"),
			key.WithHelp("alt+1-6", "quick search"),
		),
		Debug: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "debug")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Next, k.Open, k.Close, k.Retry, k.Debug, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Open, k.Close, k.Retry, k.Quick},
		{k.Debug, k.Quit},
	}
}
