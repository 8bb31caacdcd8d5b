package shopui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shopcart/internal/cart"
	"github.com/iliyamo/shopcart/internal/model"
)

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func testCards() []Card {
	return []Card{{Name: "Apple", Price: "$9.99"}, {Name: "Pear", Price: "$1.50"}}
}

func TestAddToCart(t *testing.T) {
	m := New(testCards(), cart.New())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runeKey('a'), runeKey('j'), runeKey('a'))

	v := m.Cart()
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "Apple x 2", v.Lines[0].Text)
	assert.Equal(t, "19.98", v.Lines[0].Subtotal)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, "$21.48", v.Total)
	assert.Equal(t, "added Pear", m.Notice())
	assert.Contains(t, m.View(), "cart 3")
}

func TestAddOutOfRangePriceLeavesCartAlone(t *testing.T) {
	m := New([]Card{{Name: "Yacht", Price: "$100000000000000000"}}, cart.New())
	m = press(t, m, runeKey('a'))

	assert.Empty(t, m.Cart().Lines)
	assert.Equal(t, "$0.00", m.Cart().Total)
	assert.Contains(t, m.Notice(), "cannot add Yacht")
}

func TestCursorStaysInBounds(t *testing.T) {
	m := New(testCards(), cart.New())
	m = press(t, m, runeKey('k'), runeKey('j'), runeKey('j'), runeKey('j'), runeKey('a'))
	assert.Equal(t, "Pear x 1", m.Cart().Lines[0].Text)
}

func TestSidebarToggleAndRemove(t *testing.T) {
	m := New(testCards(), cart.New())
	m = press(t, m, runeKey('a'), runeKey('j'), runeKey('a'), runeKey('c'))
	require.True(t, m.SidebarOpen())
	assert.Contains(t, m.View(), "Your cart")

	// In the sidebar, 'a' does nothing.
	m = press(t, m, runeKey('a'))
	assert.Equal(t, 2, m.Cart().Count)

	m = press(t, m, runeKey('j'), runeKey('x'))
	v := m.Cart()
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "Apple x 1", v.Lines[0].Text)
	assert.Equal(t, "$9.99", v.Total)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.False(t, m.SidebarOpen())
}

func TestCheckout(t *testing.T) {
	m := New(testCards(), cart.New())
	m = press(t, m, runeKey('c'), runeKey('o'))
	assert.Equal(t, cart.NoticeEmpty, m.Notice())
	assert.True(t, m.SidebarOpen())

	m = press(t, m, runeKey('c'), runeKey('a'), runeKey('c'), runeKey('o'))
	assert.Equal(t, cart.NoticeThankYou, m.Notice())
	assert.False(t, m.SidebarOpen())
	assert.Equal(t, "$0.00", m.Cart().Total)
	assert.Contains(t, m.View(), cart.NoticeThankYou)
}

func TestRemoveOnEmptyCartIsNoop(t *testing.T) {
	m := New(testCards(), cart.New())
	m = press(t, m, runeKey('c'), runeKey('x'))
	assert.Equal(t, 0, m.Cart().Count)
}

func TestQuit(t *testing.T) {
	store := cart.New()
	m := New(testCards(), store)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, updated.View())

	// The model no longer follows the store after quitting.
	store.AddItem("Apple", 1)
	assert.Equal(t, 0, updated.(Model).Cart().Count)
}

func TestDefaultCatalog(t *testing.T) {
	cards := DefaultCatalog()
	require.NotEmpty(t, cards)
	for _, c := range cards {
		assert.Greater(t, c.Amount(), 0.0, c.Name)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Mug","price":"$7.25"}]`), 0o644))
	cards, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []Card{{Name: "Mug", Price: "$7.25"}}, cards)

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	_, err = LoadCatalog(path)
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCardsFromProducts(t *testing.T) {
	cards := CardsFromProducts([]model.Product{{Name: "Widget", Price: 9.5}})
	assert.Equal(t, []Card{{Name: "Widget", Price: "$9.50"}}, cards)
	assert.Equal(t, 9.5, cards[0].Amount())
}

func TestHelpFollowsMode(t *testing.T) {
	m := New(testCards(), cart.New())
	assert.True(t, strings.Contains(m.View(), "add to cart"))
	m = press(t, m, runeKey('c'))
	assert.True(t, strings.Contains(m.View(), "checkout"))
}
