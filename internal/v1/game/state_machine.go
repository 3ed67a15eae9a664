package game

import (
	"context"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"go.uber.org/zap"
)

// Broadcaster is the narrow interface the driver needs from
// internal/v1/broadcast: assign a sequence number and fan events out to
// every seat (§4.8). Defined here, implemented there, to avoid game
// importing broadcast and broadcast importing game.
type Broadcaster interface {
	Broadcast(roomID types.RoomIDType, events []Event)
	Unicast(roomID types.RoomIDType, player types.PlayerName, errorCode, message string)
}

// PhaseObserver is notified of every phase transition so a room's BotActor
// can wake up without the driver importing the bot package directly (§9:
// handle indirection — game knows nothing about bot.Actor's type, only
// this narrow interface). internal/v1/bot.Actor satisfies it as-is.
type PhaseObserver interface {
	// OnPhaseChange schedules think-delayed intents for every bot seat
	// the new phase expects an action from.
	OnPhaseChange(ctx context.Context, phase string, turnNumber int, botSeats []types.PlayerName)
	// CancelPending discards any intents scheduled for the phase just
	// left (§4.10: cancellation on phase change during the delay).
	CancelPending()
}

// StateMachine is the single consumer goroutine per room that drains the
// ActionQueue and drives Game through its phases (§4.7). It never performs
// blocking I/O itself while holding the phase transition — broadcasting is
// delegated to Broadcaster, whose own implementation is responsible for
// not blocking the driver indefinitely on a slow client.
type StateMachine struct {
	Game        *Game
	Actions     *queue.ActionQueue
	Broadcaster Broadcaster
	RoomID      types.RoomIDType
	Observer    PhaseObserver
}

// NewStateMachine wires a driver for one room. g.Actions must be the same
// queue passed here (phases schedule their own timeouts on it). observer
// may be nil (e.g. a room with no bot seats yet).
func NewStateMachine(roomID types.RoomIDType, g *Game, actions *queue.ActionQueue, broadcaster Broadcaster, observer PhaseObserver) *StateMachine {
	return &StateMachine{Game: g, Actions: actions, Broadcaster: broadcaster, RoomID: roomID, Observer: observer}
}

// Run blocks draining actions until ctx is cancelled or the queue is
// closed. Intended to be launched with `go sm.Run(ctx)` once per room.
func (sm *StateMachine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		action, ok := sm.Actions.Dequeue()
		if !ok {
			return
		}
		sm.step(ctx, action)
	}
}

func (sm *StateMachine) step(ctx context.Context, action queue.Action) {
	start := time.Now()
	phaseName := sm.Game.Phase.Name()

	result := sm.Game.Phase.Handle(sm.Game, action)
	metrics.PhaseHandleDuration.WithLabelValues(phaseName).Observe(time.Since(start).Seconds())

	if !result.Accepted {
		metrics.ActionsProcessed.WithLabelValues(string(action.Type), "rejected").Inc()
		sm.Broadcaster.Unicast(sm.RoomID, action.PlayerName, result.Reason, result.Reason)
		return
	}
	metrics.ActionsProcessed.WithLabelValues(string(action.Type), "accepted").Inc()

	if len(result.Events) > 0 {
		sm.Broadcaster.Broadcast(sm.RoomID, result.Events)
	}

	next := result.NextPhase
	for next != nil {
		sm.transition(ctx, next)
		next = sm.Game.pendingNextPhase
		sm.Game.pendingNextPhase = nil
	}
}

// transition runs on_exit/on_enter for one phase switch and broadcasts
// whatever the new phase's entry effects produce (§4.7: "each phase emits
// own phase_change").
func (sm *StateMachine) transition(ctx context.Context, next Phase) {
	if sm.Observer != nil {
		sm.Observer.CancelPending()
	}

	sm.Game.Phase.OnExit(sm.Game)
	sm.Game.Phase = next

	logging.Info(ctx, "phase transition", zap.String("to_phase", next.Name()), zap.String("room_id", string(sm.RoomID)))

	events := next.OnEnter(sm.Game)
	if len(events) > 0 {
		sm.Broadcaster.Broadcast(sm.RoomID, events)
	}

	if sm.Observer != nil {
		sm.Observer.OnPhaseChange(ctx, next.Name(), sm.Game.TurnNumber, sm.Game.BotSeatsAwaitingAction())
	}
}
