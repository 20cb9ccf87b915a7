package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// --- Key Helpers ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down")
}

// --- Editor Key Map ---

// EditorKeyMap holds the editor bindings that are not plain typing.
type EditorKeyMap struct {
	Submit    key.Binding
	Newline   key.Binding
	Select    key.Binding
	Dismiss   key.Binding
	Paste     key.Binding
	Home      key.Binding
	End       key.Binding
	Backspace key.Binding
	Delete    key.Binding
}

// DefaultEditorKeys is the standard editor key map.
var DefaultEditorKeys = EditorKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Newline: key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("ctrl+j", "newline"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", "tab"),
		key.WithHelp("enter/tab", "pick"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss"),
	),
	Paste: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "paste"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "ctrl+a"),
		key.WithHelp("ctrl+a", "start"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "ctrl+e"),
		key.WithHelp("ctrl+e", "end"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace", "ctrl+h"),
	),
	Delete: key.NewBinding(
		key.WithKeys("delete"),
	),
}

// --- App Key Map ---

type appKeyMap struct {
	Recall key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var appKeys = appKeyMap{
	Recall: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "recall"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
