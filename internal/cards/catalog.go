package cards

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidCard = errors.New("invalid card")

//go:embed catalog.json
var defaultCatalog []byte

// Catalog is a validated, ordered list of card definitions.
type Catalog struct {
	cards []Card
	byID  map[string]Card
}

// DefaultCatalog returns the built-in card tables.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file with the same shape as the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var list []Card
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return NewCatalog(list)
}

func NewCatalog(list []Card) (*Catalog, error) {
	c := &Catalog{
		cards: make([]Card, 0, len(list)),
		byID:  make(map[string]Card, len(list)),
	}
	for i, card := range list {
		if err := validate(card); err != nil {
			return nil, fmt.Errorf("card %d (%q): %w", i, card.ID, err)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("card %d (%q): %w: duplicate id", i, card.ID, ErrInvalidCard)
		}
		c.cards = append(c.cards, card)
		c.byID[card.ID] = card
	}
	return c, nil
}

func validate(card Card) error {
	if card.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCard)
	}
	if card.Value < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidCard)
	}

	switch card.Kind {
	case KindProperty:
		if !knownColor(card.Color) {
			return fmt.Errorf("%w: unknown color %q", ErrInvalidCard, card.Color)
		}
		if len(card.Rent) == 0 {
			return fmt.Errorf("%w: property without rent table", ErrInvalidCard)
		}
		if card.SetSize <= 0 {
			return fmt.Errorf("%w: property without set size", ErrInvalidCard)
		}
	case KindWild:
		if len(card.Colors) == 0 {
			return fmt.Errorf("%w: wild without colors", ErrInvalidCard)
		}
		for _, color := range card.Colors {
			if !knownColor(color) {
				return fmt.Errorf("%w: unknown color %q", ErrInvalidCard, color)
			}
		}
	case KindMoney, KindAction, KindRent:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCard, card.Kind)
	}
	return nil
}

// NewDeck returns a fresh, unshuffled copy of every card in catalog order.
func (c *Catalog) NewDeck() []Card {
	deck := make([]Card, len(c.cards))
	copy(deck, c.cards)
	return deck
}

func (c *Catalog) Len() int { return len(c.cards) }

func (c *Catalog) Card(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}
