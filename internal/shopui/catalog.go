package shopui

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/iliyamo/shopcart/internal/cart"
	"github.com/iliyamo/shopcart/internal/model"
)

// Card is a product as shown in the shop: a name and the displayed price
// text.  The cart reads the amount back out of Price.
type Card struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Amount is the numeric value of the card's price text.
func (c Card) Amount() float64 { return cart.ParsePrice(c.Price) }

//go:embed catalog.json
var defaultCatalog []byte

// DefaultCatalog returns the built-in demo cards.
func DefaultCatalog() []Card {
	cards, err := decodeCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("shopui: embedded catalog: %v", err))
	}
	return cards
}

// LoadCatalog reads cards from a JSON file shaped like the embedded one.
func LoadCatalog(path string) ([]Card, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decodeCatalog(raw)
}

// CardsFromProducts turns catalog products fetched from the API into cards.
func CardsFromProducts(items []model.Product) []Card {
	cards := make([]Card, 0, len(items))
	for _, p := range items {
		cards = append(cards, Card{Name: p.Name, Price: fmt.Sprintf("$%.2f", p.Price)})
	}
	return cards
}

func decodeCatalog(raw []byte) ([]Card, error) {
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("decode catalog: no products")
	}
	for i, c := range cards {
		if c.Name == "" {
			return nil, fmt.Errorf("decode catalog: product %d has no name", i)
		}
	}
	return cards, nil
}
