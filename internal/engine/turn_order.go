package engine

// advanceTurn hands the turn to the next seat and opens its draw phase.
func advanceTurn(s *State) {
	if len(s.Players) == 0 {
		return
	}
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
	for i := range s.Players {
		s.Players[i].IsActive = i == s.CurrentPlayerIndex
	}
	s.CardsPlayed = 0
	s.CardsDrawn = 0
	s.Phase = PhaseDraw
}

// NextPlayerIndex is the seat that follows the current one.
func NextPlayerIndex(s State) int {
	if len(s.Players) == 0 {
		return 0
	}
	return (s.CurrentPlayerIndex + 1) % len(s.Players)
}
