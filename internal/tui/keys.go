package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type listKeyMap struct {
	New     key.Binding
	View    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Menu    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new user")),
		View:    key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter/v", "view")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Menu:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "actions")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type modalKeyMap struct {
	Save     key.Binding
	Cancel   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Toggle   key.Binding
	AddNew   key.Binding
	EditView key.Binding
}

func newModalKeyMap() modalKeyMap {
	return modalKeyMap{
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle country")),
		AddNew:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add new user")),
		EditView: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	}
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
