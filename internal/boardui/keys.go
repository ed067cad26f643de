package boardui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Add      key.Binding
	Move     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Search   key.Binding
	Star     key.Binding
	Reload   key.Binding
	Dismiss  key.Binding
	NextItem key.Binding
	PrevItem key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "board/finder")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		Prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Star:     key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "star")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		NextItem: key.NewBinding(key.WithKeys("tab", "down")),
		PrevItem: key.NewBinding(key.WithKeys("shift+tab", "up")),
	}
}
