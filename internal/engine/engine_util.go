package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/google/uuid"
)

const StartingHandSize = 5

var ErrNotEnoughPlayers = errors.New("at least two players required")
var ErrTooManyPlayers = errors.New("too many players")
var ErrInvalidSettings = errors.New("invalid game settings")

var avatars = []string{"🐶", "🐱", "🐹", "🐰", "🐠"}

const fallbackAvatar = "🐾"

func DefaultSettings() Settings {
	return Settings{
		CardsPerTurnStart: 2,
		MaxCardsPerTurn:   3,
		SetsToWin:         3,
		MaxPlayers:        4,
	}
}

func (s Settings) Validate() error {
	if s.CardsPerTurnStart < 1 || s.MaxCardsPerTurn < 1 || s.SetsToWin < 1 || s.MaxPlayers < 2 {
		return fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}
	return nil
}

// NewGame deals a fresh game: the catalog deck is shuffled with rng, each
// player receives StartingHandSize cards in seating order, and the first seat
// opens in the draw phase.
func NewGame(names []string, settings Settings, catalog *cards.Catalog, rng *rand.Rand) (State, error) {
	if err := settings.Validate(); err != nil {
		return State{}, err
	}
	if len(names) < 2 {
		return State{}, ErrNotEnoughPlayers
	}
	if len(names) > settings.MaxPlayers {
		return State{}, fmt.Errorf("%w: %d > %d", ErrTooManyPlayers, len(names), settings.MaxPlayers)
	}

	deck := cards.Shuffle(catalog.NewDeck(), rng)

	players := make([]Player, len(names))
	for i, name := range names {
		avatar := fallbackAvatar
		if i < len(avatars) {
			avatar = avatars[i]
		}
		players[i] = Player{
			ID:         fmt.Sprintf("player-%d", i),
			Name:       name,
			Avatar:     avatar,
			Hand:       []cards.Card{},
			Bank:       []cards.Card{},
			Properties: []PropertySet{},
			IsActive:   i == 0,
		}
		for range StartingHandSize {
			if len(deck) == 0 {
				break
			}
			players[i].Hand = append(players[i].Hand, deck[len(deck)-1])
			deck = deck[:len(deck)-1]
		}
	}

	return State{
		ID:          uuid.NewString(),
		Players:     players,
		Phase:       PhaseDraw,
		Deck:        deck,
		DiscardPile: []cards.Card{},
		ActionStack: ActionStack{Actions: []Command{}},
		Settings:    settings,
	}, nil
}

func CurrentPlayer(s State) (Player, bool) {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}

func PlayerByID(s State, id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// CanPlayCard reports whether the active player may play cardID right now,
// to the bank at least.
func CanPlayCard(s State, cardID string) bool {
	_, err := checkPlay(s, cardID)
	return err == nil
}

func CanEndTurn(s State) bool {
	return s.Phase == PhasePlay && s.CardsDrawn >= s.Settings.CardsPerTurnStart
}

func CanDraw(s State) bool {
	return s.Phase == PhaseDraw && s.CardsDrawn < s.Settings.CardsPerTurnStart && len(s.Deck) > 0
}

// Stalled reports a game that cannot move on: the active player must draw but
// the deck is gone, or a short draw left the turn unable to end.
func Stalled(s State) bool {
	if s.Phase == PhaseGameOver || len(s.Deck) > 0 {
		return false
	}
	return s.Phase == PhaseDraw || (s.Phase == PhasePlay && !CanEndTurn(s))
}

func BankValue(p Player) int {
	total := 0
	for _, c := range p.Bank {
		total += c.Value
	}
	return total
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
