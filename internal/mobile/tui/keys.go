package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add        key.Binding
	Edit       key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	MarkAll    key.Binding
	Clear      key.Binding
	Undo       key.Binding
	Search     key.Binding
	Status     key.Binding
	Priority   key.Binding
	Sync       key.Binding
	Wallet     key.Binding
	Disconnect key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		MarkAll:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark all done")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Priority:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		Sync:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		Wallet:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wallet network")),
		Disconnect: key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "disconnect")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Sync, k.Wallet, k.Undo}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{
		k.Add, k.Edit, k.Toggle, k.Delete, k.MarkAll, k.Clear, k.Undo,
		k.Search, k.Status, k.Priority, k.Sync, k.Wallet, k.Disconnect,
	}
}
