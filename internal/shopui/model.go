// Package shopui is the terminal storefront: a list of product cards with
// a toggleable cart sidebar backed by a cart.Store.
package shopui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/shopcart/internal/cart"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	badgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(30)
	selectedStyle = cardStyle.BorderForeground(lipgloss.Color("212"))
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sidebarStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(36).MarginLeft(2)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	noticeStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the bubbletea model of the shop.  The cart view is shared
// through a pointer so that every copy of the model sees the latest
// rendering pushed by the store.
type Model struct {
	cards  []Card
	cursor int

	store       *cart.Store
	view        *cart.View
	unsubscribe func()

	sidebarOpen bool
	lineCursor  int
	notice      string

	keys     KeyMap
	quitting bool
}

// New builds a model over cards and store.
func New(cards []Card, store *cart.Store) Model {
	v := store.Render()
	m := Model{cards: cards, store: store, view: &v, keys: DefaultKeyMap}
	view := m.view
	m.unsubscribe = store.Subscribe(func(nv cart.View) { *view = nv })
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.ToggleCart):
		m.sidebarOpen = !m.sidebarOpen
		m.lineCursor = 0
		m.notice = ""
		return m, nil
	}

	if m.sidebarOpen {
		return m.updateSidebar(keyMsg), nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		if len(m.cards) == 0 {
			break
		}
		c := m.cards[m.cursor]
		if !m.store.AddItem(c.Name, c.Amount()) {
			m.notice = fmt.Sprintf("cannot add %s: price %s is out of range", c.Name, c.Price)
			break
		}
		m.notice = fmt.Sprintf("added %s", c.Name)
	}
	return m, nil
}

func (m Model) updateSidebar(msg tea.KeyMsg) Model {
	lines := len(m.view.Lines)
	switch {
	case key.Matches(msg, m.keys.Close):
		m.sidebarOpen = false
		m.notice = ""
	case key.Matches(msg, m.keys.Up):
		if m.lineCursor > 0 {
			m.lineCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.lineCursor < lines-1 {
			m.lineCursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if m.store.RemoveItem(m.lineCursor) {
			m.notice = ""
			if n := len(m.view.Lines); m.lineCursor >= n && n > 0 {
				m.lineCursor = n - 1
			}
		}
	case key.Matches(msg, m.keys.Checkout):
		n := m.store.Checkout()
		m.notice = n.Text
		if n.Completed {
			m.sidebarOpen = false
			m.lineCursor = 0
		}
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("shopcart"))
	b.WriteString("  ")
	b.WriteString(badgeStyle.Render(fmt.Sprintf("cart %d", m.view.Count)))
	b.WriteString("\n\n")

	cards := make([]string, 0, len(m.cards))
	for i, c := range m.cards {
		style := cardStyle
		if i == m.cursor && !m.sidebarOpen {
			style = selectedStyle
		}
		cards = append(cards, style.Render(c.Name+"\n"+priceStyle.Render(c.Price)))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if m.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.sidebarView())
	}
	b.WriteString(body)
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your cart"))
	b.WriteString("\n")
	if len(m.view.Lines) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, l := range m.view.Lines {
		marker := "  "
		if l.Index == m.lineCursor {
			marker = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-20s %8s\n", marker, l.Text, l.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s", m.view.Total)
	return sidebarStyle.Render(b.String())
}

func (m Model) helpView() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Add, m.keys.ToggleCart, m.keys.Quit}
	if m.sidebarOpen {
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Remove, m.keys.Checkout, m.keys.Close, m.keys.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// Cart returns the current cart view.
func (m Model) Cart() cart.View { return *m.view }

// SidebarOpen reports whether the cart sidebar is shown.
func (m Model) SidebarOpen() bool { return m.sidebarOpen }

// Notice returns the message currently shown to the shopper.
func (m Model) Notice() string { return m.notice }
