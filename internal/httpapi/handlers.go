package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"github.com/DoyleJ11/petdeal-backend/internal/hub"
	"github.com/DoyleJ11/petdeal-backend/internal/lobby"
	"github.com/DoyleJ11/petdeal-backend/internal/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Deps is everything the handlers need from main.
type Deps struct {
	Hub            *hub.Hub
	Catalog        *cards.Catalog
	Settings       engine.Settings
	BotDelay       time.Duration
	Linger         time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	Logger         *zap.Logger
}

const maxCodeAttempts = 10

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings := d.Settings
		req := types.CreateGameRequest{Settings: &settings}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Settings == nil {
			req.Settings = &settings
		}
		for i, name := range req.Players {
			req.Players[i] = strings.TrimSpace(name)
			if req.Players[i] == "" {
				writeError(w, http.StatusBadRequest, "player names must not be empty")
				return
			}
		}

		state, err := engine.NewGame(req.Players, *req.Settings, d.Catalog, nil)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		opts := lobby.Options{BotDelay: d.BotDelay, Linger: d.Linger, IdleTimeout: d.IdleTimeout}
		if req.Bots {
			for _, p := range state.Players[1:] {
				opts.BotSeats = append(opts.BotSeats, p.ID)
			}
		}

		for attempt := 0; ; attempt++ {
			if attempt == maxCodeAttempts {
				writeError(w, http.StatusInternalServerError, "failed to allocate a game code")
				return
			}
			code, err := GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			lb, err := d.Hub.Create(r.Context(), code, state, opts)
			if err != nil {
				writeHubError(w, err)
				return
			}
			if lb != nil {
				writeJSON(w, http.StatusCreated, types.GameResponse{Code: code, Version: 0, State: state})
				return
			}
			d.Logger.Debug("collision on code, regenerating", zap.String("code", code))
		}
	}
}

func GetGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		view, ok := lobbyView(w, r, d.Hub, code)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, types.GameResponse{Code: code, Version: view.Version, State: view.State})
	}
}

func PostCommand(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d.Hub, chi.URLParam(r, "code"))
		if !ok {
			return
		}

		var msg types.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		out, err := lb.Submit(r.Context(), engine.Command{
			Type:     engine.CommandType(msg.Type),
			PlayerID: msg.PlayerID,
			CardID:   msg.CardID,
		})
		if err != nil {
			writeHubError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, commandResponse(out))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func DeleteGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		ok, err := d.Hub.Remove(r.Context(), code)
		if err != nil {
			writeHubError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetPlayer reports one seat together with what it may do right now.
func GetPlayer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		view, ok := lobbyView(w, r, d.Hub, code)
		if !ok {
			return
		}
		p, found := engine.PlayerByID(view.State, chi.URLParam(r, "playerID"))
		if !found {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		writeJSON(w, http.StatusOK, playerView(code, view, p))
	}
}

func ListCards(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.NewDeck())
	}
}

func GetCard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, ok := d.Catalog.Card(chi.URLParam(r, "cardID"))
		if !ok {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func playerView(code string, view lobby.View, p engine.Player) types.PlayerResponse {
	s := view.State
	resp := types.PlayerResponse{
		Code:            code,
		Version:         view.Version,
		Player:          p,
		BankValue:       engine.BankValue(p),
		PlayableCardIDs: []string{},
		Stalled:         view.Stalled,
	}
	if len(s.Players) > 0 {
		resp.NextPlayerID = s.Players[engine.NextPlayerIndex(s)].ID
	}

	cur, ok := engine.CurrentPlayer(s)
	if !ok || cur.ID != p.ID {
		return resp
	}
	resp.CanDraw = engine.CanDraw(s)
	resp.CanEndTurn = engine.CanEndTurn(s)
	for _, c := range p.Hand {
		if engine.CanPlayCard(s, c.ID) {
			resp.PlayableCardIDs = append(resp.PlayableCardIDs, c.ID)
		}
	}
	return resp
}

// findLobby writes the error response itself when it returns false.
func findLobby(w http.ResponseWriter, r *http.Request, h *hub.Hub, code string) (*lobby.Lobby, bool) {
	lb, err := h.Get(r.Context(), code)
	if err != nil {
		writeHubError(w, err)
		return nil, false
	}
	if lb == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return nil, false
	}
	return lb, true
}

func lobbyView(w http.ResponseWriter, r *http.Request, h *hub.Hub, code string) (lobby.View, bool) {
	lb, ok := findLobby(w, r, h, code)
	if !ok {
		return lobby.View{}, false
	}
	view, err := lb.View(r.Context())
	if err != nil {
		writeHubError(w, err)
		return lobby.View{}, false
	}
	return view, true
}

// writeHubError maps a closed hub or lobby to 503 and a lobby that vanished
// mid-request to 410.
func writeHubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hub.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "server shutting down")
	case errors.Is(err, lobby.ErrClosed):
		writeError(w, http.StatusGone, "game closed")
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

func commandResponse(out lobby.Outcome) types.CommandResponse {
	resp := types.CommandResponse{
		Result:  "applied",
		Events:  out.Events,
		Version: out.Version,
		State:   out.State,
	}
	if !out.Applied {
		resp.Result = "rejected"
		resp.Reason = out.Reason.Error()
	}
	if resp.Events == nil {
		resp.Events = []engine.Event{}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
