package lobby

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newGame(t *testing.T, names ...string) engine.State {
	t.Helper()
	catalog, err := cards.DefaultCatalog()
	require.NoError(t, err)
	s, err := engine.NewGame(names, engine.DefaultSettings(), catalog, rand.New(rand.NewPCG(5, 8)))
	require.NoError(t, err)
	return s
}

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got version %d", within, s.Version)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvOutcome(t *testing.T, ch <-chan Outcome, within time.Duration) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(within):
		t.Fatalf("timed out waiting for outcome")
		return Outcome{} // unreachable
	}
}

func getView(t *testing.T, l *Lobby) View {
	t.Helper()
	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestLobby_Draw_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{Logger: zaptest.NewLogger(t)})

	clientOut := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	require.Equal(t, 0, first.Version)
	require.Equal(t, engine.PhaseDraw, first.State.Phase)

	reply := make(chan Outcome, 1)
	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdDrawCards, PlayerID: "player-0"}, Reply: reply}

	out := recvOutcome(t, reply, 100*time.Millisecond)
	require.True(t, out.Applied)
	assert.Equal(t, 1, out.Version)
	assert.True(t, engine.ContainsEvent(out.Events, engine.EvtCardsDrawn))

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, engine.PhasePlay, next.State.Phase)
	assert.Len(t, next.State.Players[0].Hand, engine.StartingHandSize+2)

	l.Inbox() <- Shutdown{}
}

func TestLobby_RejectedCommand_NoBroadcast(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{})

	clientOut := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	_ = recvSnapshot(t, clientOut, 100*time.Millisecond)

	reply := make(chan Outcome, 1)
	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdDrawCards, PlayerID: "player-1"}, Reply: reply}

	out := recvOutcome(t, reply, 100*time.Millisecond)
	assert.False(t, out.Applied)
	assert.ErrorIs(t, out.Reason, engine.ErrWrongTurn)
	assert.Equal(t, 0, out.Version)

	recvNoSnapshot(t, clientOut, 150*time.Millisecond)
	assert.Equal(t, 0, getView(t, l).Version)
}

func TestLobby_DropSlowClient(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{})

	// The join snapshot fills the buffer and is never drained.
	clientOut := make(chan Snapshot, 1)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdDrawCards, PlayerID: "player-0"}}

	view := getView(t, l)
	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestLobby_BotSeatPlaysItsTurn(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{BotSeats: []string{"player-1"}})

	clientOut := make(chan Snapshot, 16)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	_ = recvSnapshot(t, clientOut, 100*time.Millisecond)

	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdDrawCards, PlayerID: "player-0"}}
	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdEndTurn, PlayerID: "player-0"}}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-clientOut:
			require.True(t, ok)
			s := snap.State
			if snap.Version > 2 && s.CurrentPlayerIndex == 0 && s.Phase == engine.PhaseDraw {
				bot := s.Players[1]
				assert.Len(t, bot.Hand, engine.StartingHandSize+2-playedBy(bot))
				return
			}
		case <-deadline:
			t.Fatalf("bot never handed the turn back")
		}
	}
}

func playedBy(p engine.Player) int {
	n := len(p.Bank)
	for _, set := range p.Properties {
		n += len(set.Cards)
	}
	return n
}

func TestLobby_HumanSeatIsNotAutoplayed(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{BotSeats: []string{"player-1"}})

	time.Sleep(50 * time.Millisecond)
	view := getView(t, l)
	assert.Equal(t, 0, view.Version)
	assert.Equal(t, 0, view.State.CurrentPlayerIndex)
}

func TestLobby_Shutdown_ClosesClients(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{})

	out := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 500*time.Millisecond) // drain join snapshot

	l.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		assert.False(t, ok, "expected closed outbox")
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("outbox not closed on shutdown")
	}
	select {
	case <-l.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("lobby context not cancelled")
	}
}

func TestLobby_SubmitAndView(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, init, Options{})

	out, err := l.Submit(ctx, engine.Command{Type: engine.CmdDrawCards, PlayerID: "player-0"})
	require.NoError(t, err)
	assert.True(t, out.Applied)

	view, err := l.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Version)
	assert.False(t, view.Stalled)
	assert.Equal(t, engine.PhasePlay, view.State.Phase)

	l.Inbox() <- Shutdown{}
	<-l.Done()

	_, err = l.Submit(context.Background(), engine.Command{Type: engine.CmdEndTurn, PlayerID: "player-0"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = l.View(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func waitDone(t *testing.T, l *Lobby, within time.Duration) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(within):
		t.Fatalf("lobby still running after %v", within)
	}
}

func TestLobby_FinishedGameExpiresAfterLinger(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")
	init.Phase = engine.PhaseGameOver
	init.WinnerID = "player-0"

	l := NewLobby(context.Background(), init, Options{Linger: 20 * time.Millisecond, IdleTimeout: time.Hour})
	waitDone(t, l, time.Second)
}

func TestLobby_IdleGameExpires(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	l := NewLobby(context.Background(), init, Options{Linger: time.Hour, IdleTimeout: 30 * time.Millisecond})
	waitDone(t, l, time.Second)

	_, err := l.View(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLobby_ConnectedClientBlocksExpiry(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")

	l := NewLobby(context.Background(), init, Options{IdleTimeout: 20 * time.Millisecond})

	out := make(chan Snapshot, 4)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	select {
	case <-l.Done():
		t.Fatalf("lobby expired with a client connected")
	case <-time.After(100 * time.Millisecond):
	}

	l.Inbox() <- Leave{ClientID: "c1"}
	waitDone(t, l, time.Second)
}

func TestLobby_NoExpiryByDefault(t *testing.T) {
	init := newGame(t, "You", "AI Player 1")
	init.Phase = engine.PhaseGameOver
	init.WinnerID = "player-0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLobby(ctx, init, Options{})

	select {
	case <-l.Done():
		t.Fatalf("lobby expired without a linger configured")
	case <-time.After(80 * time.Millisecond):
	}
}
