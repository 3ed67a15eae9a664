package game

import (
	"testing"

	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFourPlayerGame(t *testing.T) (*room.Room, *Game) {
	t.Helper()
	r := room.New("ROOM01")
	for _, name := range []types.PlayerName{"alice", "bob", "carol", "dave"} {
		_, err := r.AddPlayer(name, false)
		require.NoError(t, err)
	}
	g := New(r, rules.DefaultEngine{}, queue.NewActionQueue())
	return r, g
}

func TestWaitingPhase_StartGameRequiresFourSeats(t *testing.T) {
	r := room.New("ROOM01")
	_, _ = r.AddPlayer("alice", false)
	g := New(r, rules.DefaultEngine{}, queue.NewActionQueue())

	result := WaitingPhase{}.Handle(g, queue.Action{Type: ActionStartGame, PlayerName: "alice"})
	assert.False(t, result.Accepted)
	assert.Equal(t, "need_four_players", result.Reason)
}

func TestWaitingPhase_StartGameByNonHostRejected(t *testing.T) {
	_, g := newFourPlayerGame(t)
	result := WaitingPhase{}.Handle(g, queue.Action{Type: ActionStartGame, PlayerName: "bob"})
	assert.False(t, result.Accepted)
	assert.Equal(t, "not_host", result.Reason)
}

func TestWaitingPhase_StartGameTransitionsToPreparation(t *testing.T) {
	_, g := newFourPlayerGame(t)
	result := WaitingPhase{}.Handle(g, queue.Action{Type: ActionStartGame, PlayerName: "alice"})
	require.True(t, result.Accepted)
	require.NotNil(t, result.NextPhase)
	assert.Equal(t, "preparation", result.NextPhase.Name())
}

func TestPreparationPhase_DealsEightPiecesEach(t *testing.T) {
	r, g := newFourPlayerGame(t)
	PreparationPhase{}.OnEnter(g)

	seats := r.Seats()
	for _, s := range seats {
		require.NotNil(t, s)
		assert.Len(t, s.Hand, 8)
	}
}

func TestDeclarationPhase_LastPlayerCannotMakeTotalEight(t *testing.T) {
	_, g := newFourPlayerGame(t)
	g.StarterIdx = 0
	DeclarationPhase{}.OnEnter(g)

	// alice=2, bob=2, carol=2 -> dave cannot declare 2 (total would hit 8)
	g.seatByIndex(0).Declared = 2
	g.seatByIndex(1).Declared = 2
	g.seatByIndex(2).Declared = 2
	g.declareCursor = 3
	g.CurrentPlayerIdx = 3

	result := DeclarationPhase{}.Handle(g, queue.Action{Type: ActionDeclare, PlayerName: "dave", Payload: map[string]any{"value": float64(2)}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "total_cannot_equal_8", result.Reason)
}

func TestDeclarationPhase_NoThirdConsecutiveZero(t *testing.T) {
	_, g := newFourPlayerGame(t)
	g.StarterIdx = 0
	DeclarationPhase{}.OnEnter(g)
	g.seatByIndex(0).ZeroDeclaresInARow = 2

	result := DeclarationPhase{}.Handle(g, queue.Action{Type: ActionDeclare, PlayerName: "alice", Payload: map[string]any{"value": float64(0)}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "no_third_consecutive_zero", result.Reason)
}

func TestDeclarationPhase_NotYourTurn(t *testing.T) {
	_, g := newFourPlayerGame(t)
	g.StarterIdx = 0
	DeclarationPhase{}.OnEnter(g)

	result := DeclarationPhase{}.Handle(g, queue.Action{Type: ActionDeclare, PlayerName: "bob", Payload: map[string]any{"value": float64(1)}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "not_your_turn", result.Reason)
}

func TestDeclarationPhase_AllFourDeclaredTransitionsToTurn(t *testing.T) {
	_, g := newFourPlayerGame(t)
	g.StarterIdx = 0
	DeclarationPhase{}.OnEnter(g)

	names := []types.PlayerName{"alice", "bob", "carol", "dave"}
	var result HandleResult
	for _, n := range names {
		result = DeclarationPhase{}.Handle(g, queue.Action{Type: ActionDeclare, PlayerName: n, Payload: map[string]any{"value": float64(1)}})
		require.True(t, result.Accepted)
	}
	require.NotNil(t, result.NextPhase)
	assert.Equal(t, "turn", result.NextPhase.Name())
}

func TestTurnPhase_FirstPlayLatchesRequiredCount(t *testing.T) {
	r, g := newFourPlayerGame(t)
	g.StarterIdx = 0
	seats := r.Seats()
	for _, s := range seats {
		s.Hand = rules.FullDeck()[:8]
	}
	g.CurrentPlayerIdx = 0
	TurnPhase{}.OnEnter(g)
	g.CurrentPlayerIdx = 0

	result := TurnPhase{}.Handle(g, queue.Action{Type: ActionPlay, PlayerName: "alice", Payload: map[string]any{"indices": []any{float64(0), float64(1)}}})
	require.True(t, result.Accepted)
	require.NotNil(t, g.RequiredPieceCount)
	assert.Equal(t, 2, *g.RequiredPieceCount)
}

func TestTurnPhase_WrongPieceCountRejected(t *testing.T) {
	r, g := newFourPlayerGame(t)
	seats := r.Seats()
	for _, s := range seats {
		s.Hand = rules.FullDeck()[:8]
	}
	g.CurrentPlayerIdx = 0
	TurnPhase{}.OnEnter(g)
	g.CurrentPlayerIdx = 0
	_ = TurnPhase{}.Handle(g, queue.Action{Type: ActionPlay, PlayerName: "alice", Payload: map[string]any{"indices": []any{float64(0), float64(1)}}})

	result := TurnPhase{}.Handle(g, queue.Action{Type: ActionPlay, PlayerName: "bob", Payload: map[string]any{"indices": []any{float64(0)}}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "wrong_piece_count", result.Reason)
}

func TestTurnPhase_DuplicateIndicesRejected(t *testing.T) {
	r, g := newFourPlayerGame(t)
	seats := r.Seats()
	for _, s := range seats {
		s.Hand = rules.FullDeck()[:8]
	}
	g.CurrentPlayerIdx = 0
	TurnPhase{}.OnEnter(g)
	g.CurrentPlayerIdx = 0

	result := TurnPhase{}.Handle(g, queue.Action{Type: ActionPlay, PlayerName: "alice", Payload: map[string]any{"indices": []any{float64(0), float64(0)}}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "invalid_pieces", result.Reason)
}

func TestScoringPhase_ComputesScoreAndDecidesContinuation(t *testing.T) {
	_, g := newFourPlayerGame(t)
	g.RoundNumber = 1
	events := ScoringPhase{}.OnEnter(g)
	assert.NotEmpty(t, events)
	require.NotNil(t, g.pendingNextPhase)
	assert.Equal(t, "preparation", g.pendingNextPhase.Name())
}

func TestScoringPhase_GameOverAtScoreCap(t *testing.T) {
	r, g := newFourPlayerGame(t)
	r.SeatAt(0).Declared = 3
	r.SeatAt(0).CapturedPiles = 3
	r.SeatAt(0).Score = ScoreCap - 8 // Score(3,3,1) == 8, pushes to cap

	ScoringPhase{}.OnEnter(g)
	require.NotNil(t, g.pendingNextPhase)
	assert.Equal(t, "game_over", g.pendingNextPhase.Name())
}
