package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/petdeal-backend/internal/bot"
	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"go.uber.org/zap"
)

// ErrClosed is returned by Submit and View once the lobby has shut down.
var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

// FromClient carries one command. Reply, when set, receives the outcome.
type FromClient struct {
	Cmd   engine.Command
	Reply chan Outcome
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// botTurn is posted by the bot timer. Gen ties it to the state version that
// armed it so late fires are dropped.
type botTurn struct{ Gen int }

func (botTurn) isLobbyMsg() {}

// expire is posted by the reap timer armed with the same Gen.
type expire struct{ Gen int }

func (expire) isLobbyMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	Stalled    bool
	State      engine.State
}

// Outcome reports what happened to a command: applied with its events, or
// rejected with the engine's reason.
type Outcome struct {
	Applied bool
	Reason  error
	Events  []engine.Event
	Version int
	State   engine.State
}

type Options struct {
	// BotSeats lists player ids the lobby plays itself.
	BotSeats []string
	BotDelay time.Duration
	// With no clients connected the lobby shuts itself down after Linger
	// once the game is over or stalled, or after IdleTimeout otherwise.
	// Zero disables either.
	Linger      time.Duration
	IdleTimeout time.Duration
	Logger      *zap.Logger
}

type Lobby struct {
	inbox    chan Msg
	state    engine.State
	version  int
	clients  map[string]chan Snapshot
	bots     map[string]bool
	botDelay time.Duration
	botTimer *time.Timer

	linger    time.Duration
	idle      time.Duration
	reapTimer *time.Timer
	reapGen   int

	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewLobby(parent context.Context, initial engine.State, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bots := make(map[string]bool, len(opts.BotSeats))
	for _, id := range opts.BotSeats {
		bots[id] = true
	}

	l := &Lobby{
		inbox:    make(chan Msg, 64), // Small buffer
		state:    initial,
		version:  0,
		clients:  make(map[string]chan Snapshot),
		bots:     bots,
		botDelay: opts.BotDelay,
		linger:   opts.Linger,
		idle:     opts.IdleTimeout,
		log:      logger.With(zap.String("game_id", initial.ID)),
		ctx:      ctx,
		cancel:   cancel,
	}

	// Arm before the loop starts so the timers are only touched by one goroutine.
	l.scheduleBot()
	l.scheduleReap()
	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: l.version, State: l.state}
				l.scheduleReap()

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
					l.scheduleReap()
				}

			case FromClient:
				out := l.apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- out
				}

			case botTurn:
				if msg.Gen != l.version {
					break
				}
				l.playBot()

			case expire:
				if msg.Gen != l.reapGen || len(l.clients) > 0 {
					break
				}
				l.log.Info("lobby expired",
					zap.Int("version", l.version),
					zap.String("phase", string(l.state.Phase)))
				l.shutdown()
				return

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Stalled:    engine.Stalled(l.state),
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(cmd engine.Command) Outcome {
	events, next, err := engine.Apply(l.state, cmd)
	if err != nil {
		l.log.Debug("command rejected",
			zap.String("type", string(cmd.Type)),
			zap.String("player_id", cmd.PlayerID),
			zap.String("card_id", cmd.CardID),
			zap.Error(err))
		return Outcome{Reason: err, Version: l.version, State: l.state}
	}

	l.state = next
	l.version++
	l.log.Debug("command applied",
		zap.String("type", string(cmd.Type)),
		zap.String("player_id", cmd.PlayerID),
		zap.Int("version", l.version))

	if engine.ContainsEvent(events, engine.EvtGameCompleted) {
		l.log.Info("game completed", zap.String("winner_id", next.WinnerID))
	} else if engine.Stalled(next) {
		l.log.Info("game stalled: deck exhausted")
	}

	l.broadcast(Snapshot{Version: l.version, State: l.state})
	l.scheduleBot()
	l.scheduleReap()
	return Outcome{Applied: true, Events: events, Version: l.version, State: l.state}
}

// scheduleBot arms one bot move if the active seat belongs to a bot.
func (l *Lobby) scheduleBot() {
	cur, ok := engine.CurrentPlayer(l.state)
	if !ok || !l.bots[cur.ID] {
		return
	}
	if _, ok := bot.Decide(l.state); !ok {
		return
	}

	gen := l.version
	if l.botTimer != nil {
		l.botTimer.Stop()
	}
	l.botTimer = time.AfterFunc(l.botDelay, func() {
		select {
		case l.inbox <- botTurn{Gen: gen}:
		case <-l.ctx.Done():
		}
	})
}

// scheduleReap re-arms the expiry timer from scratch. Any earlier timer is
// invalidated by bumping reapGen.
func (l *Lobby) scheduleReap() {
	if l.reapTimer != nil {
		l.reapTimer.Stop()
	}
	l.reapGen++
	if len(l.clients) > 0 {
		return
	}

	d := l.idle
	if l.state.Phase == engine.PhaseGameOver || engine.Stalled(l.state) {
		d = l.linger
	}
	if d <= 0 {
		return
	}

	gen := l.reapGen
	l.reapTimer = time.AfterFunc(d, func() {
		select {
		case l.inbox <- expire{Gen: gen}:
		case <-l.ctx.Done():
		}
	})
}

func (l *Lobby) playBot() {
	cur, ok := engine.CurrentPlayer(l.state)
	if !ok || !l.bots[cur.ID] {
		return
	}
	cmd, ok := bot.Decide(l.state)
	if !ok {
		return
	}
	if out := l.apply(cmd); !out.Applied {
		l.log.Warn("bot move rejected", zap.String("player_id", cur.ID), zap.Error(out.Reason))
	}
}

func (l *Lobby) shutdown() {
	if l.botTimer != nil {
		l.botTimer.Stop()
	}
	if l.reapTimer != nil {
		l.reapTimer.Stop()
	}
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			l.log.Warn("dropping slow client", zap.String("client_id", id))
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby has shut down.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

// Submit hands cmd to the lobby and waits for its outcome.
func (l *Lobby) Submit(ctx context.Context, cmd engine.Command) (Outcome, error) {
	reply := make(chan Outcome, 1)
	if err := l.send(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return Outcome{}, err
	}
	return await(ctx, l, reply)
}

// View returns the lobby's current state and bookkeeping.
func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	return await(ctx, l, reply)
}

func (l *Lobby) send(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-l.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, l *Lobby, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-l.ctx.Done():
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
