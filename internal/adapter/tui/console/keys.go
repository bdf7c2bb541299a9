package console

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Home     key.Binding
	Reload   key.Binding
	Views    []key.Binding
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Toast    key.Binding
	Escape   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Enter    key.Binding
	Save     key.Binding
	Yes      key.Binding
	No       key.Binding
	Search   key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	Checkout key.Binding
	ResetBuy key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Home:   key.NewBinding(key.WithKeys("h", "0"), key.WithHelp("h", "home")),
	Reload: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
	Views: []key.Binding{
		key.NewBinding(key.WithKeys("1")),
		key.NewBinding(key.WithKeys("2")),
		key.NewBinding(key.WithKeys("3")),
		key.NewBinding(key.WithKeys("4")),
		key.NewBinding(key.WithKeys("5")),
		key.NewBinding(key.WithKeys("6")),
		key.NewBinding(key.WithKeys("7")),
	},
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Toast:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "open alert")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Yes:      key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	No:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "barcode")),
	Inc:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
	Dec:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less")),
	Remove:   key.NewBinding(key.WithKeys("x", "d", "delete"), key.WithHelp("x", "remove")),
	Checkout: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "record sale")),
	ResetBuy: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new sale")),
}
