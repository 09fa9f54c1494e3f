package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"github.com/DoyleJ11/petdeal-backend/internal/hub"
	"github.com/DoyleJ11/petdeal-backend/internal/lobby"
	"github.com/DoyleJ11/petdeal-backend/internal/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, origins []string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		lb, err := h.Get(r.Context(), code)
		if err != nil {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		if lb == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
		if err != nil {
			logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(zap.String("lobby", code), zap.String("client_id", clientID))
		log.Info("websocket connected")

		out := make(chan lobby.Snapshot, 8)
		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()

		// Writer goroutine. The outbox closes when the lobby drops us or shuts
		// down, which ends the connection.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: types.MsgStateSnapshot, Version: snap.Version, State: &snap.State}
				if err := write(writeCtx, conn, msg); err != nil {
					log.Debug("snapshot write failed", zap.Error(err))
				}
			}
			conn.Close(websocket.StatusGoingAway, "lobby closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("websocket disconnected")
				default:
					log.Info("websocket disconnected", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "bad json"})
				continue
			}

			cmd, ok := ToEngineCommand(cm)
			if !ok {
				_ = write(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "unknown type"})
				continue
			}

			outcome, err := lb.Submit(r.Context(), cmd)
			if err != nil {
				return // lobby closed or request cancelled
			}
			if !outcome.Applied {
				_ = write(r.Context(), conn, types.ServerMessage{
					Type:    types.MsgRejected,
					Version: outcome.Version,
					Reason:  outcome.Reason.Error(),
				})
			}
		}
	}
}

// ToEngineCommand maps a wire message onto an engine command. Unknown types
// are refused here so they never reach the lobby.
func ToEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch t := engine.CommandType(m.Type); t {
	case engine.CmdDrawCards, engine.CmdEndTurn:
		return engine.Command{Type: t, PlayerID: m.PlayerID}, true
	case engine.CmdPlayCardToBank, engine.CmdPlayCardToProperty:
		return engine.Command{Type: t, PlayerID: m.PlayerID, CardID: m.CardID}, true
	default:
		return engine.Command{}, false
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
