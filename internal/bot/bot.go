// Package bot picks moves for AI seats.
package bot

import (
	"cmp"
	"slices"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/DoyleJ11/petdeal-backend/internal/engine"
)

// Decide returns the next command for the active seat, or false when the
// seat has nothing legal left to do (game over or a stalled deck).
//
// Priority during play: lay a property that grows an existing set, lay any
// other property, bank the most valuable non-property card, then end the
// turn.
func Decide(s engine.State) (engine.Command, bool) {
	me, ok := engine.CurrentPlayer(s)
	if !ok || s.Phase == engine.PhaseGameOver {
		return engine.Command{}, false
	}

	switch s.Phase {
	case engine.PhaseDraw:
		if !engine.CanDraw(s) {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdDrawCards, PlayerID: me.ID}, true

	case engine.PhasePlay:
		if s.CardsPlayed < s.Settings.MaxCardsPerTurn {
			if card, ok := pickProperty(me); ok {
				return engine.Command{Type: engine.CmdPlayCardToProperty, PlayerID: me.ID, CardID: card.ID}, true
			}
			if card, ok := pickBank(me); ok {
				return engine.Command{Type: engine.CmdPlayCardToBank, PlayerID: me.ID, CardID: card.ID}, true
			}
		}
		if engine.CanEndTurn(s) {
			return engine.Command{Type: engine.CmdEndTurn, PlayerID: me.ID}, true
		}
	}
	return engine.Command{}, false
}

func pickProperty(me engine.Player) (cards.Card, bool) {
	var fallback *cards.Card
	for i, c := range me.Hand {
		if !c.Placeable() {
			continue
		}
		for _, set := range me.Properties {
			if !set.IsComplete && c.CanBe(set.Color) {
				return c, true
			}
		}
		if fallback == nil {
			fallback = &me.Hand[i]
		}
	}
	if fallback == nil {
		return cards.Card{}, false
	}
	return *fallback, true
}

func pickBank(me engine.Player) (cards.Card, bool) {
	candidates := slices.DeleteFunc(slices.Clone(me.Hand), func(c cards.Card) bool {
		return c.Placeable()
	})
	if len(candidates) == 0 {
		return cards.Card{}, false
	}
	return slices.MaxFunc(candidates, func(a, b cards.Card) int {
		return cmp.Compare(a.Value, b.Value)
	}), true
}
