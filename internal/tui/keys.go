package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	tab     key.Binding
	quit    key.Binding
	newItem key.Binding
	save    key.Binding
	refresh key.Binding
	delete  key.Binding
	copy    key.Binding
	version key.Binding
	yes     key.Binding
	no      key.Binding

	// remediation overlay
	discard key.Binding
	retry   key.Binding
	keep    key.Binding
	export  key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	tab:     key.NewBinding(key.WithKeys("tab", "shift+tab")),
	quit:    key.NewBinding(key.WithKeys("q")),
	newItem: key.NewBinding(key.WithKeys("n")),
	save:    key.NewBinding(key.WithKeys("ctrl+s")),
	refresh: key.NewBinding(key.WithKeys("r")),
	delete:  key.NewBinding(key.WithKeys("d", "ctrl+d")),
	copy:    key.NewBinding(key.WithKeys("c")),
	version: key.NewBinding(key.WithKeys("v")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n", "esc")),

	discard: key.NewBinding(key.WithKeys("1")),
	retry:   key.NewBinding(key.WithKeys("2")),
	keep:    key.NewBinding(key.WithKeys("3")),
	export:  key.NewBinding(key.WithKeys("c")),
}
