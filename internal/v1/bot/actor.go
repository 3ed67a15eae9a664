package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ThinkDelay bounds are the ranges BotActor samples from before acting
// (§4.10), so a room full of bots doesn't resolve instantly and feel
// inhuman.
type ThinkDelay struct {
	DeclareMin, DeclareMax time.Duration
	RedealMin, RedealMax   time.Duration
}

// DefaultThinkDelay matches §4.10's figures.
var DefaultThinkDelay = ThinkDelay{
	DeclareMin: 500 * time.Millisecond,
	DeclareMax: 1500 * time.Millisecond,
	RedealMin:  300 * time.Millisecond,
	RedealMax:  800 * time.Millisecond,
}

// intentKey identifies one (phase, turn_number, seat) decision point, used
// to enforce exactly-once bot intent (§4.10: "refuses double-enqueue").
type intentKey struct {
	phase string
	turn  int
	seat  types.PlayerName
}

// Actor is one room's bot driver: it watches phase_change notifications
// and, whenever the phase expects an action from a bot seat, thinks for a
// random delay and enqueues exactly one action for that decision point.
type Actor struct {
	handle   RoomHandle
	strategy Strategy
	delay    ThinkDelay
	breaker  *gobreaker.CircuitBreaker
	roomID   types.RoomIDType

	mu      sync.Mutex
	seen    map[intentKey]bool
	cancels map[intentKey]context.CancelFunc
}

// NewActor wires a bot actor for one room. Its circuit breaker is named
// after roomID, and each actor has its own breaker instance.
func NewActor(roomID types.RoomIDType, handle RoomHandle, strategy Strategy, delay ThinkDelay) *Actor {
	settings := gobreaker.Settings{
		Name:        "bot-strategy-" + string(roomID),
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BotBreakerState.WithLabelValues(string(roomID)).Set(float64(to))
		},
	}
	return &Actor{
		handle:   handle,
		strategy: strategy,
		delay:    delay,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		roomID:   roomID,
		seen:     make(map[intentKey]bool),
		cancels:  make(map[intentKey]context.CancelFunc),
	}
}

// OnPhaseChange is called by the state machine (in-process, synchronous
// with broadcast — §4.10 "subscribes phase_change in-process") whenever
// the phase transitions. For every bot-controlled seat the new phase
// expects an action from, it schedules a delayed decision.
func (a *Actor) OnPhaseChange(ctx context.Context, phase string, turnNumber int, botSeats []types.PlayerName) {
	for _, seat := range botSeats {
		a.scheduleIntent(ctx, phase, turnNumber, seat)
	}
}

// CancelPending discards any in-flight think-delay goroutines, called
// when the phase changes again before they fire (§4.10: "cancellation on
// phase change during delay discards pending intent").
func (a *Actor) CancelPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, cancel := range a.cancels {
		cancel()
		delete(a.cancels, key)
	}
}

func (a *Actor) scheduleIntent(ctx context.Context, phase string, turnNumber int, seat types.PlayerName) {
	key := intentKey{phase: phase, turn: turnNumber, seat: seat}

	a.mu.Lock()
	if a.seen[key] {
		a.mu.Unlock()
		return
	}
	a.seen[key] = true
	intentCtx, cancel := context.WithCancel(ctx)
	a.cancels[key] = cancel
	a.mu.Unlock()

	delay := a.sampleDelay(phase)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-intentCtx.Done():
			metrics.BotIntents.WithLabelValues("cancelled").Inc()
			return
		case <-timer.C:
		}
		a.act(intentCtx, phase, seat)
	}()
}

func (a *Actor) sampleDelay(phase string) time.Duration {
	lo, hi := a.delay.DeclareMin, a.delay.DeclareMax
	if phase == "preparation" {
		lo, hi = a.delay.RedealMin, a.delay.RedealMax
	}
	span := int64(hi - lo)
	if span <= 0 {
		return lo
	}
	return lo + time.Duration(rand.Int63n(span))
}

func (a *Actor) act(ctx context.Context, phase string, seat types.PlayerName) {
	result, err := a.breaker.Execute(func() (any, error) {
		actionType, payload := a.strategy.ChooseAction(phase, a.handle, seat)
		if actionType == "" {
			return nil, nil
		}
		return queue.Action{Type: actionType, PlayerName: seat, Payload: payload}, nil
	})
	if err != nil {
		logging.Error(ctx, "bot strategy call failed", zap.String("room_id", string(a.roomID)), zap.Error(err))
		metrics.BotIntents.WithLabelValues("breaker_rejected").Inc()
		return
	}
	action, ok := result.(queue.Action)
	if !ok {
		return
	}
	a.handle.Enqueue(action)
	metrics.BotIntents.WithLabelValues("enqueued").Inc()
}
