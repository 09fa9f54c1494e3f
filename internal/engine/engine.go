package engine

import (
	"errors"
	"slices"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
)

var ErrWrongTurn = errors.New("not the active player")
var ErrWrongPhase = errors.New("not allowed in this phase")
var ErrGameAlreadyCompleted = errors.New("game already completed")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrMissingCard = errors.New("card id required")
var ErrCardNotInHand = errors.New("card not in hand")
var ErrPlayLimitReached = errors.New("play limit reached for this turn")
var ErrNotPlaceable = errors.New("card cannot be played as a property")
var ErrDeckEmpty = errors.New("deck is empty")
var ErrDrawComplete = errors.New("cards already drawn this turn")
var ErrDrawIncomplete = errors.New("draw not finished")

type CommandType string

const (
	CmdDrawCards          CommandType = "DRAW_CARDS"
	CmdPlayCardToBank     CommandType = "PLAY_CARD_TO_BANK"
	CmdPlayCardToProperty CommandType = "PLAY_CARD_TO_PROPERTY"
	CmdEndTurn            CommandType = "END_TURN"
)

/*
	CmdDrawCards          -> EvtCardsDrawn
	CmdPlayCardToBank     -> EvtCardBanked
	CmdPlayCardToProperty -> EvtPropertyPlayed (-> EvtSetCompleted when the count goes up)
	CmdEndTurn            -> EvtTurnAdvanced, or EvtGameCompleted when the active player has enough sets
*/

type Command struct {
	Type     CommandType `json:"type"`
	PlayerID string      `json:"playerId"`
	CardID   string      `json:"cardId,omitempty"`
}

type EventType string

const (
	EvtCardsDrawn     EventType = "CardsDrawn"
	EvtCardBanked     EventType = "CardBanked"
	EvtPropertyPlayed EventType = "PropertyPlayed"
	EvtSetCompleted   EventType = "SetCompleted"
	EvtTurnAdvanced   EventType = "TurnAdvanced"
	EvtGameCompleted  EventType = "GameCompleted"
)

type Event struct {
	Type     EventType   `json:"type"`
	PlayerID string      `json:"playerId,omitempty"`
	CardIDs  []string    `json:"cardIds,omitempty"`
	Color    cards.Color `json:"color,omitempty"`
}

// Apply validates cmd against s and returns the events it produced together
// with the next state. A rejected command returns s untouched and one of the
// Err* values above; s itself is never modified.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if s.Phase == PhaseGameOver || s.WinnerID != "" {
		return nil, s, ErrGameAlreadyCompleted
	}

	switch cmd.Type {
	case CmdDrawCards, CmdPlayCardToBank, CmdPlayCardToProperty, CmdEndTurn:
	default:
		return nil, s, ErrUnsupportedCommand
	}

	current, ok := CurrentPlayer(s)
	if !ok || cmd.PlayerID != current.ID {
		return nil, s, ErrWrongTurn
	}

	switch cmd.Type {
	case CmdDrawCards:
		return drawCards(s)
	case CmdPlayCardToBank:
		return playToBank(s, cmd.CardID)
	case CmdPlayCardToProperty:
		return playToProperty(s, cmd.CardID)
	default:
		return endTurn(s)
	}
}

// Reduce is Apply without the rejection reason: invalid commands leave the
// state as it was.
func Reduce(s State, cmd Command) State {
	_, next, _ := Apply(s, cmd)
	return next
}

func drawCards(s State) ([]Event, State, error) {
	if s.Phase != PhaseDraw {
		return nil, s, ErrWrongPhase
	}

	need := s.Settings.CardsPerTurnStart - s.CardsDrawn
	if need <= 0 {
		return nil, s, ErrDrawComplete
	}
	if len(s.Deck) == 0 {
		return nil, s, ErrDeckEmpty
	}

	n := min(need, len(s.Deck))
	newState := s.clone()
	p := &newState.Players[newState.CurrentPlayerIndex]

	drawn := make([]string, 0, n)
	for range n {
		top := newState.Deck[len(newState.Deck)-1]
		newState.Deck = newState.Deck[:len(newState.Deck)-1]
		p.Hand = append(p.Hand, top)
		newState.CardsDrawn++
		drawn = append(drawn, top.ID)
	}

	// Drawing is one step per turn, short draws included.
	newState.Phase = PhasePlay

	events := []Event{{Type: EvtCardsDrawn, PlayerID: p.ID, CardIDs: drawn}}
	return events, newState, nil
}

func checkPlay(s State, cardID string) (int, error) {
	if s.Phase != PhasePlay {
		return -1, ErrWrongPhase
	}
	if s.CardsPlayed >= s.Settings.MaxCardsPerTurn {
		return -1, ErrPlayLimitReached
	}
	if cardID == "" {
		return -1, ErrMissingCard
	}
	idx := handIndex(s.Players[s.CurrentPlayerIndex], cardID)
	if idx < 0 {
		return -1, ErrCardNotInHand
	}
	return idx, nil
}

func playToBank(s State, cardID string) ([]Event, State, error) {
	idx, err := checkPlay(s, cardID)
	if err != nil {
		return nil, s, err
	}

	newState := s.clone()
	p := &newState.Players[newState.CurrentPlayerIndex]
	card := p.Hand[idx]
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	p.Bank = append(p.Bank, card)
	newState.CardsPlayed++

	events := []Event{{Type: EvtCardBanked, PlayerID: p.ID, CardIDs: []string{card.ID}}}
	return events, newState, nil
}

func playToProperty(s State, cardID string) ([]Event, State, error) {
	idx, err := checkPlay(s, cardID)
	if err != nil {
		return nil, s, err
	}
	if !s.Players[s.CurrentPlayerIndex].Hand[idx].Placeable() {
		return nil, s, ErrNotPlaceable
	}

	newState := s.clone()
	p := &newState.Players[newState.CurrentPlayerIndex]
	card := p.Hand[idx]
	p.Hand = slices.Delete(p.Hand, idx, idx+1)

	placed := false
	for i := range p.Properties {
		if card.CanBe(p.Properties[i].Color) {
			p.Properties[i].Cards = append(p.Properties[i].Cards, card)
			placed = true
			break
		}
	}
	if !placed {
		color := card.Color
		if card.Kind == cards.KindWild {
			color = card.Colors[0]
		}
		p.Properties = append(p.Properties, PropertySet{Color: color, Cards: []cards.Card{card}})
	}

	before := p.CompletedSets
	p.Properties = OrganizeProperties(ownedProperties(p.Properties))
	p.CompletedSets = countComplete(p.Properties)
	newState.CardsPlayed++

	events := []Event{{
		Type:     EvtPropertyPlayed,
		PlayerID: p.ID,
		CardIDs:  []string{card.ID},
		Color:    setColorOf(p.Properties, card.ID),
	}}
	if p.CompletedSets > before {
		events = append(events, Event{Type: EvtSetCompleted, PlayerID: p.ID, Color: setColorOf(p.Properties, card.ID)})
	}
	return events, newState, nil
}

func endTurn(s State) ([]Event, State, error) {
	if s.Phase != PhasePlay {
		return nil, s, ErrWrongPhase
	}
	if s.CardsDrawn < s.Settings.CardsPerTurnStart {
		return nil, s, ErrDrawIncomplete
	}

	newState := s.clone()
	p := newState.Players[newState.CurrentPlayerIndex]

	if p.CompletedSets >= newState.Settings.SetsToWin {
		newState.WinnerID = p.ID
		newState.Phase = PhaseGameOver
		return []Event{{Type: EvtGameCompleted, PlayerID: p.ID}}, newState, nil
	}

	advanceTurn(&newState)
	next := newState.Players[newState.CurrentPlayerIndex]
	return []Event{{Type: EvtTurnAdvanced, PlayerID: next.ID}}, newState, nil
}

func handIndex(p Player, cardID string) int {
	return slices.IndexFunc(p.Hand, func(c cards.Card) bool { return c.ID == cardID })
}

func setColorOf(sets []PropertySet, cardID string) cards.Color {
	for _, set := range sets {
		for _, c := range set.Cards {
			if c.ID == cardID {
				return set.Color
			}
		}
	}
	return ""
}
