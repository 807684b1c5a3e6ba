package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the host shortcuts. Keys it does not bind go to the Stage.
type keyMap struct {
	New      key.Binding
	Hint     key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Music    key.Binding
	Settings key.Binding
	Size     key.Binding
	Reveal   key.Binding
	CTA      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Hint:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hint")),
		Undo:     key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:     key.NewBinding(key.WithKeys("r", "ctrl+y"), key.WithHelp("r", "redo")),
		Music:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "music")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Size:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "size")),
		Reveal:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "finish text")),
		CTA:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "button")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Hint, k.Undo, k.CTA, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Hint, k.Undo, k.Redo},
		{k.Music, k.Settings, k.Size},
		{k.Reveal, k.CTA, k.Help, k.Quit},
	}
}
