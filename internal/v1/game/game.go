package game

import (
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// TurnRecord is one completed turn, kept in TurnHistoryThisRound for
// scoring and for the "previous winner starts" rule (§4.6.5).
type TurnRecord struct {
	WinnerName       types.PlayerName
	RequiredCount    int
	Plays            []rules.Play
}

// RedealOffer tracks the Preparation phase's weak-hand offer walk
// (§4.6.2): which seats are weak, which one is currently being asked, and
// who has already declined this round.
type RedealOffer struct {
	WeakSeats  []types.SeatIndex
	Cursor     int
	Multiplier int
}

// Game holds everything outside the static seat roster: phase, round/turn
// counters, the in-progress play, and redeal bookkeeping (§4.6-4.7). It
// references its Room by pointer but the reference never runs the other
// way — Room has no knowledge of Game (§9 handle indirection).
type Game struct {
	mu sync.RWMutex

	Room   *room.Room
	Engine rules.Engine

	// Actions is this room's ActionQueue. Phases use it to schedule the
	// fixed-delay internal timeouts (RoundStart's 5s, TurnResults' 3s
	// fallback) as ordinary queued actions, so a firing timer never races
	// the single-consumer driver loop.
	Actions *queue.ActionQueue

	Phase Phase

	RoundNumber      int
	TurnNumber       int
	RedealMultiplier int

	TurnHistoryThisRound []TurnRecord

	StarterIdx        types.SeatIndex
	CurrentPlayerIdx  types.SeatIndex
	CurrentPlays      []rules.Play
	RequiredPieceCount *int

	DeclarationOrder []types.SeatIndex
	declareCursor    int

	Redeal *RedealOffer

	roundStartTimer *time.Timer
	turnResultsTimer *time.Timer

	// pendingNextPhase is set by a phase's Handle when it wants the
	// driver to transition after broadcasting this phase's events.
	pendingNextPhase Phase
}

// New creates a Game bound to r, starting in WaitingPhase, using engine for
// all rules decisions.
func New(r *room.Room, engine rules.Engine, actions *queue.ActionQueue) *Game {
	return &Game{
		Room:             r,
		Engine:           engine,
		Actions:          actions,
		Phase:            WaitingPhase{},
		RedealMultiplier: 1,
		CurrentPlayerIdx: types.NoSeat,
		StarterIdx:       types.NoSeat,
	}
}

// requestTransition is called by a phase's Handle to ask the driver to
// move to next once the current phase's events have been broadcast.
func (g *Game) requestTransition(next Phase) {
	g.pendingNextPhase = next
}

// Snapshot is the wire-safe view of game state embedded in phase_change
// payloads (§6.3): players is always an array.
type Snapshot struct {
	Phase              string          `json:"phase"`
	RoundNumber        int             `json:"round_number"`
	TurnNumber         int             `json:"turn_number"`
	RedealMultiplier   int             `json:"redeal_multiplier"`
	Players            []room.Snapshot `json:"players"`
	CurrentPlayer      string          `json:"current_player,omitempty"`
	Starter            string          `json:"starter,omitempty"`
	RequiredPieceCount int             `json:"required_piece_count,omitempty"`
}

// Snapshot builds the current wire view of the game. Safe to call from any
// goroutine (e.g. BotActor reading state between driver steps).
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seats := g.Room.Seats()
	players := make([]room.Snapshot, 0, types.SeatCount)
	for _, s := range seats {
		players = append(players, s.Snapshot())
	}

	snap := Snapshot{
		Phase:            g.Phase.Name(),
		RoundNumber:      g.RoundNumber,
		TurnNumber:       g.TurnNumber,
		RedealMultiplier: g.RedealMultiplier,
		Players:          players,
	}
	if g.CurrentPlayerIdx.Valid() {
		if seat := seats[g.CurrentPlayerIdx]; seat != nil {
			snap.CurrentPlayer = string(seat.Name)
		}
	}
	if g.StarterIdx.Valid() {
		if seat := seats[g.StarterIdx]; seat != nil {
			snap.Starter = string(seat.Name)
		}
	}
	if g.RequiredPieceCount != nil {
		snap.RequiredPieceCount = *g.RequiredPieceCount
	}
	return snap
}

// seatByIndex is a small helper used throughout the phase implementations.
func (g *Game) seatByIndex(idx types.SeatIndex) *room.Seat {
	return g.Room.SeatAt(idx)
}

// BotSeatsAwaitingAction reports which bot-controlled seats the current
// phase currently expects a real game action from (§4.10: the state
// machine driver uses this after every transition to wake the BotActor).
// leave_room is excluded since every phase accepts it universally and a
// bot never leaves on its own.
func (g *Game) BotSeatsAwaitingAction() []types.PlayerName {
	var seats []types.PlayerName
	for _, s := range g.Room.Seats() {
		if s == nil || !s.IsBot {
			continue
		}
		actions := g.Phase.AllowedActions(g, s.Name)
		actions.Delete(ActionLeaveRoom)
		if actions.Len() > 0 {
			seats = append(seats, s.Name)
		}
	}
	return seats
}

// nextClockwise returns the next seat index clockwise from idx, wrapping
// around the fixed 4 slots; it does not check whether that slot is occupied.
func nextClockwise(idx types.SeatIndex) types.SeatIndex {
	return types.SeatIndex((int(idx) + 1) % types.SeatCount)
}
