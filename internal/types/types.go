package types

import "github.com/DoyleJ11/petdeal-backend/internal/engine"

// Server message types.
const (
	MsgStateSnapshot = "StateSnapshot"
	MsgRejected      = "Rejected"
	MsgError         = "Error"
)

// ClientMessage is a command sent over the websocket. Type uses the engine's
// command names (DRAW_CARDS, PLAY_CARD_TO_BANK, ...).
type ClientMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId,omitempty"`
}

type ServerMessage struct {
	Type    string         `json:"type"` // "StateSnapshot" | "Rejected" | "Error"
	Version int            `json:"version,omitempty"`
	State   *engine.State  `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Events  []engine.Event `json:"events,omitempty"`
}

type CreateGameRequest struct {
	Players  []string         `json:"players"`
	Settings *engine.Settings `json:"settings,omitempty"`
	Bots     bool             `json:"bots,omitempty"`
}

type GameResponse struct {
	Code    string       `json:"code"`
	Version int          `json:"version"`
	State   engine.State `json:"state"`
}

// CommandResponse reports the outcome of POST /games/{code}/commands.
type CommandResponse struct {
	Result  string         `json:"result"` // "applied" | "rejected"
	Reason  string         `json:"reason,omitempty"`
	Events  []engine.Event `json:"events"`
	Version int            `json:"version"`
	State   engine.State   `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// PlayerResponse is one seat plus what it may do in the current state. The
// Can* fields and PlayableCardIDs are only set for the active seat.
type PlayerResponse struct {
	Code            string        `json:"code"`
	Version         int           `json:"version"`
	Player          engine.Player `json:"player"`
	BankValue       int           `json:"bankValue"`
	PlayableCardIDs []string      `json:"playableCardIds"`
	CanDraw         bool          `json:"canDraw"`
	CanEndTurn      bool          `json:"canEndTurn"`
	NextPlayerID    string        `json:"nextPlayerId,omitempty"`
	Stalled         bool          `json:"stalled"`
}
