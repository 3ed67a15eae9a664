package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu       sync.Mutex
	hands    map[types.PlayerName][]rules.Piece
	required int
	enqueued []queue.Action
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{hands: make(map[types.PlayerName][]rules.Piece)}
}

func (h *fakeHandle) Snapshot() game.Snapshot {
	return game.Snapshot{RequiredPieceCount: h.required}
}

func (h *fakeHandle) Hand(seat types.PlayerName) []rules.Piece {
	return h.hands[seat]
}

func (h *fakeHandle) Enqueue(action queue.Action) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueued = append(h.enqueued, action)
	return int64(len(h.enqueued))
}

func (h *fakeHandle) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.enqueued)
}

var fastDelay = ThinkDelay{
	DeclareMin: time.Millisecond,
	DeclareMax: 2 * time.Millisecond,
	RedealMin:  time.Millisecond,
	RedealMax:  2 * time.Millisecond,
}

func TestActor_EnqueuesActionAfterThinkDelay(t *testing.T) {
	handle := newFakeHandle()
	handle.hands["bot1"] = rules.FullDeck()[:8]
	actor := NewActor("ROOM01", handle, DefaultStrategy{Engine: rules.DefaultEngine{}}, fastDelay)

	actor.OnPhaseChange(context.Background(), "declaration", 0, []types.PlayerName{"bot1"})

	require.Eventually(t, func() bool { return handle.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, game.ActionDeclare, handle.enqueued[0].Type)
}

func TestActor_ExactlyOnceIntentPerDecisionPoint(t *testing.T) {
	handle := newFakeHandle()
	handle.hands["bot1"] = rules.FullDeck()[:8]
	actor := NewActor("ROOM01", handle, DefaultStrategy{Engine: rules.DefaultEngine{}}, fastDelay)

	actor.OnPhaseChange(context.Background(), "declaration", 0, []types.PlayerName{"bot1"})
	actor.OnPhaseChange(context.Background(), "declaration", 0, []types.PlayerName{"bot1"})
	actor.OnPhaseChange(context.Background(), "declaration", 0, []types.PlayerName{"bot1"})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, handle.count(), "repeated notifications for the same decision point must not double-enqueue")
}

func TestActor_CancelPendingDiscardsIntent(t *testing.T) {
	handle := newFakeHandle()
	handle.hands["bot1"] = rules.FullDeck()[:8]
	slowDelay := ThinkDelay{DeclareMin: 200 * time.Millisecond, DeclareMax: 250 * time.Millisecond}
	actor := NewActor("ROOM01", handle, DefaultStrategy{Engine: rules.DefaultEngine{}}, slowDelay)

	actor.OnPhaseChange(context.Background(), "declaration", 0, []types.PlayerName{"bot1"})
	actor.CancelPending()

	time.Sleep(350 * time.Millisecond)
	assert.Equal(t, 0, handle.count(), "cancelled intent must never enqueue")
}

func TestActor_PlayMatchesLatchedRequiredPieceCount(t *testing.T) {
	handle := newFakeHandle()
	handle.hands["bot1"] = rules.FullDeck()[:8]
	handle.required = 2
	actor := NewActor("ROOM01", handle, DefaultStrategy{Engine: rules.DefaultEngine{}}, fastDelay)

	actor.OnPhaseChange(context.Background(), "turn", 1, []types.PlayerName{"bot1"})

	require.Eventually(t, func() bool { return handle.count() == 1 }, time.Second, 5*time.Millisecond)
	indices, _ := handle.enqueued[0].Payload["indices"].([]any)
	assert.Len(t, indices, 2, "a non-leading bot must match the turn's latched required piece count")
}

func TestActor_DifferentTurnsAllowSeparateIntents(t *testing.T) {
	handle := newFakeHandle()
	handle.hands["bot1"] = rules.FullDeck()[:8]
	actor := NewActor("ROOM01", handle, DefaultStrategy{Engine: rules.DefaultEngine{}}, fastDelay)

	actor.OnPhaseChange(context.Background(), "turn", 1, []types.PlayerName{"bot1"})
	require.Eventually(t, func() bool { return handle.count() == 1 }, time.Second, 5*time.Millisecond)

	actor.OnPhaseChange(context.Background(), "turn", 2, []types.PlayerName{"bot1"})
	require.Eventually(t, func() bool { return handle.count() == 2 }, time.Second, 5*time.Millisecond)
}
