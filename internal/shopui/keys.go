package shopui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the shop UI.  Up and Down move the
// card cursor, or the line cursor while the cart sidebar is open.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Add        key.Binding
	ToggleCart key.Binding
	Remove     key.Binding // sidebar only
	Checkout   key.Binding // sidebar only
	Close      key.Binding

	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Add: key.NewBinding(
		key.WithKeys("enter", "a"),
		key.WithHelp("enter/a", "add to cart"),
	),
	ToggleCart: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cart"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x", "d"),
		key.WithHelp("x", "remove"),
	),
	Checkout: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "checkout"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close cart"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
