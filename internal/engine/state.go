package engine

import "github.com/DoyleJ11/petdeal-backend/internal/cards"

type Phase string

const (
	PhaseDraw Phase = "draw"
	PhasePlay Phase = "play"
	// PhaseEndTurn is never stored; END_TURN moves straight from play to
	// the next player's draw.
	PhaseEndTurn Phase = "end-turn"
	// PhaseActionResolution is reserved for action-card effects and is
	// never entered.
	PhaseActionResolution Phase = "action-resolution"
	PhaseGameOver         Phase = "game-over"
)

type Settings struct {
	CardsPerTurnStart int `json:"cardsPerTurnStart"`
	MaxCardsPerTurn   int `json:"maxCardsPerTurn"`
	SetsToWin         int `json:"setsToWin"`
	MaxPlayers        int `json:"maxPlayers"`
}

// PropertySet is derived from a player's owned property and wild cards by
// OrganizeProperties. It is never patched in place.
type PropertySet struct {
	Color      cards.Color  `json:"color"`
	Cards      []cards.Card `json:"cards"`
	IsComplete bool         `json:"isComplete"`
	TotalRent  int          `json:"totalRent"`
}

type Player struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Avatar        string        `json:"avatar,omitempty"`
	Hand          []cards.Card  `json:"hand"`
	Bank          []cards.Card  `json:"bank"`
	Properties    []PropertySet `json:"properties"`
	CompletedSets int           `json:"completedSets"`
	IsActive      bool          `json:"isActive"`
}

// ActionStack anticipates a resolution protocol for action cards (pending
// actions with block windows). Nothing populates it yet.
type ActionStack struct {
	Actions          []Command `json:"actions"`
	Current          *Command  `json:"currentAction,omitempty"`
	CanBlock         bool      `json:"canBlock"`
	BlockingPlayerID string    `json:"blockingPlayerId,omitempty"`
}

type State struct {
	ID                 string       `json:"id"`
	Players            []Player     `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Phase              Phase        `json:"phase"`
	Deck               []cards.Card `json:"deck"`
	DiscardPile        []cards.Card `json:"discardPile"`
	ActionStack        ActionStack  `json:"actionStack"`
	CardsPlayed        int          `json:"cardsPlayed"`
	CardsDrawn         int          `json:"cardsDrawn"`
	WinnerID           string       `json:"winnerId,omitempty"`
	Settings           Settings     `json:"gameSettings"`
}

// clone deep-copies everything Apply may touch. Card values are immutable
// and shared.
func (s State) clone() State {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Deck = cloneCards(s.Deck)
	out.DiscardPile = cloneCards(s.DiscardPile)
	out.ActionStack.Actions = append([]Command(nil), s.ActionStack.Actions...)
	return out
}

func (p Player) clone() Player {
	out := p
	out.Hand = cloneCards(p.Hand)
	out.Bank = cloneCards(p.Bank)
	out.Properties = make([]PropertySet, len(p.Properties))
	for i, set := range p.Properties {
		set.Cards = cloneCards(set.Cards)
		out.Properties[i] = set
	}
	return out
}

func cloneCards(in []cards.Card) []cards.Card {
	out := make([]cards.Card, len(in))
	copy(out, in)
	return out
}
