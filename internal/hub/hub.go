package hub

import (
	"context"
	"errors"

	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"github.com/DoyleJ11/petdeal-backend/internal/lobby"
	"go.uber.org/zap"
)

// ErrClosed is returned by the request helpers once the hub has stopped.
var ErrClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// CreateLobby registers a new game under Code. Reply receives nil when the
// code is already taken.
type CreateLobby struct {
	Code    string
	State   engine.State
	Options lobby.Options
	Reply   chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// RemoveLobby shuts the lobby down and forgets it. Reply, when set, reports
// whether the code was registered.
type RemoveLobby struct {
	Code  string
	Reply chan bool
}

type ListLobbies struct {
	Reply chan []string
}

type ShutdownHub struct{}

// lobbyClosed is posted when a lobby stops on its own.
type lobbyClosed struct {
	Code  string
	Lobby *lobby.Lobby
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}
func (lobbyClosed) isHubMsg() {}

func NewHub(parent context.Context, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed when the hub stops.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Get returns the lobby registered under code, or nil.
func (h *Hub) Get(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, GetLobby{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, h, reply)
}

// Create starts a lobby for state under code. It returns nil when the code
// is taken.
func (h *Hub) Create(ctx context.Context, code string, state engine.State, opts lobby.Options) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, CreateLobby{Code: code, State: state, Options: opts, Reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, h, reply)
}

// Remove shuts down the lobby under code and reports whether it existed.
func (h *Hub) Remove(ctx context.Context, code string) (bool, error) {
	reply := make(chan bool, 1)
	if err := h.send(ctx, RemoveLobby{Code: code, Reply: reply}); err != nil {
		return false, err
	}
	return await(ctx, h, reply)
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, h *Hub, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.ctx.Done():
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if h.lobbies[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				opts := msg.Options
				opts.Logger = h.log.With(zap.String("lobby", msg.Code))
				lb := lobby.NewLobby(h.ctx, msg.State, opts)
				h.lobbies[msg.Code] = lb
				go h.watch(msg.Code, lb)
				h.log.Info("lobby created",
					zap.String("lobby", msg.Code),
					zap.Int("players", len(msg.State.Players)),
					zap.Int("bots", len(msg.Options.BotSeats)))
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case RemoveLobby:
				lb := h.lobbies[msg.Code]
				if lb != nil {
					stopLobby(lb)
					delete(h.lobbies, msg.Code)
					h.log.Info("lobby removed", zap.String("lobby", msg.Code))
				}
				if msg.Reply != nil {
					msg.Reply <- lb != nil
				}

			case lobbyClosed:
				if h.lobbies[msg.Code] == msg.Lobby {
					delete(h.lobbies, msg.Code)
					h.log.Info("lobby expired", zap.String("lobby", msg.Code))
				}

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case ShutdownHub:
				for _, lb := range h.lobbies {
					stopLobby(lb)
				}
				clear(h.lobbies)
				h.cancel()
			}
		}
	}
}

// watch reports lb back to the hub once it stops.
func (h *Hub) watch(code string, lb *lobby.Lobby) {
	select {
	case <-lb.Done():
		select {
		case h.inbox <- lobbyClosed{Code: code, Lobby: lb}:
		case <-h.ctx.Done():
		}
	case <-h.ctx.Done():
	}
}

func stopLobby(lb *lobby.Lobby) {
	select {
	case lb.Inbox() <- lobby.Shutdown{}:
	case <-lb.Done():
	}
}
