package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings for both focus modes. Which bindings are live
// depends on whether the query input or the result list has focus.
type keyMap struct {
	Quit    key.Binding
	Submit  key.Binding
	Trigger key.Binding
	Focus   key.Binding
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Select  key.Binding
	Debug   key.Binding
	Leave   key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Trigger: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "search")),
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results")),
	Back:    key.NewBinding(key.WithKeys("esc", "tab", "/"), key.WithHelp("esc", "query")),
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "nav")),
	Down:    key.NewBinding(key.WithKeys("j", "down")),
	Top:     key.NewBinding(key.WithKeys("g", "home")),
	Bottom:  key.NewBinding(key.WithKeys("G", "end")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "recommend")),
	Debug:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
	Leave:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}
