// Package supervisor implements RoomSupervisor (§4.9): it creates and
// destroys rooms, wires each room's Room/Game/ActionQueue/Broadcaster/
// BotActor together, and owns the disconnect -> bot-conversion, reconnect,
// host-migration, and all-bot-cleanup policies that sit above the
// GameStateMachine itself.
package supervisor

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/bot"
	"github.com/andynenth/liap-tui-server/internal/v1/broadcast"
	"github.com/andynenth/liap-tui-server/internal/v1/config"
	"github.com/andynenth/liap-tui-server/internal/v1/connection"
	"github.com/andynenth/liap-tui-server/internal/v1/eventlog"
	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"go.uber.org/zap"
)

// roomIDAlphabet is deliberately alnum-uppercase-only, matching the §6.3
// wire contract for room ids.
const roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// entry is everything the supervisor owns for one live room.
type entry struct {
	room       *room.Room
	game       *game.Game
	actions    *queue.ActionQueue
	broadcaster *broadcast.Broadcaster
	actor      *bot.Actor
	machine    *game.StateMachine
	ring       *eventlog.Ring
	cancel     context.CancelFunc
	createdAt  time.Time
}

// RoomSummary is the read-only view used by the lobby/debug HTTP surface
// (§6.5, SPEC_FULL "Room listing & stats HTTP surface").
type RoomSummary struct {
	RoomID      types.RoomIDType `json:"room_id"`
	HostName    string           `json:"host_name"`
	SeatCount   int              `json:"seat_count"`
	Phase       string           `json:"phase"`
	Started     bool             `json:"started"`
	RoundNumber int              `json:"round_number"`
}

// Supervisor is the process-wide room registry (§9: "the only process-wide
// mutable state"). It is safe for concurrent use.
type Supervisor struct {
	mu    sync.Mutex
	rooms map[types.RoomIDType]*entry

	registry     *connection.Registry
	messageQueue *queue.MessageQueue
	sender       broadcast.Sender
	engine       rules.Engine
	strategy     bot.Strategy
	cfg          *config.Config

	accepting bool

	cleanupTimers map[types.RoomIDType]*time.Timer
}

// New creates an empty supervisor. sender is the transport-facing delivery
// implementation (internal/v1/transport.Hub in production); registry is
// shared across every room so a single transport can look up any seat.
func New(cfg *config.Config, registry *connection.Registry, sender broadcast.Sender, engine rules.Engine, strategy bot.Strategy) *Supervisor {
	return &Supervisor{
		rooms:         make(map[types.RoomIDType]*entry),
		registry:      registry,
		messageQueue:  queue.NewMessageQueue(cfg.MessageQueueCap),
		sender:        sender,
		engine:        engine,
		strategy:      strategy,
		cfg:           cfg,
		accepting:     true,
		cleanupTimers: make(map[types.RoomIDType]*time.Timer),
	}
}

// AcceptingRooms and RoomCount satisfy health.RoomAccepter.
func (s *Supervisor) AcceptingRooms() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepting
}

func (s *Supervisor) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// CreateRoom creates a new room, seats hostName as its first (and host)
// player, and starts the room's driver loop, bot actor, and broadcaster.
func (s *Supervisor) CreateRoom(ctx context.Context, hostName types.PlayerName) (types.RoomIDType, types.SeatIndex, error) {
	s.mu.Lock()
	if !s.accepting {
		s.mu.Unlock()
		return "", types.NoSeat, ErrNotAccepting
	}
	id := s.newRoomID()
	s.mu.Unlock()

	e := s.buildRoom(id)

	slot, err := e.room.AddPlayer(hostName, false)
	if err != nil {
		return "", types.NoSeat, err
	}

	s.mu.Lock()
	s.rooms[id] = e
	s.mu.Unlock()
	metrics.ActiveRooms.Inc()
	metrics.RoomPlayers.WithLabelValues(string(id)).Set(1)

	s.startRoom(ctx, e)
	logging.Info(ctx, "room created", zap.String("room_id", string(id)), zap.String("host", string(hostName)))
	return id, slot, nil
}

// JoinRoom seats playerName into an existing, not-yet-started room.
func (s *Supervisor) JoinRoom(ctx context.Context, roomID types.RoomIDType, playerName types.PlayerName) (types.SeatIndex, error) {
	e, ok := s.lookup(roomID)
	if !ok {
		return types.NoSeat, ErrRoomNotFound
	}
	s.cancelPendingCleanup(roomID)
	slot, err := e.room.AddPlayer(playerName, false)
	if err != nil {
		return types.NoSeat, err
	}
	metrics.RoomPlayers.WithLabelValues(string(roomID)).Set(float64(e.room.SeatCount()))
	return slot, nil
}

// Enqueue forwards a client-originated action to a room's ActionQueue
// (§4.5). ok is false if the room does not exist.
func (s *Supervisor) Enqueue(roomID types.RoomIDType, action queue.Action) (int64, bool) {
	e, ok := s.lookup(roomID)
	if !ok {
		return 0, false
	}
	return e.actions.Enqueue(action), true
}

// Room returns the live Room for roomID, used by the transport layer to
// validate actions before enqueueing and by the HTTP debug surface.
func (s *Supervisor) Room(roomID types.RoomIDType) (*room.Room, bool) {
	e, ok := s.lookup(roomID)
	if !ok {
		return nil, false
	}
	return e.room, true
}

// Snapshot returns the current game snapshot for roomID.
func (s *Supervisor) Snapshot(roomID types.RoomIDType) (game.Snapshot, bool) {
	e, ok := s.lookup(roomID)
	if !ok {
		return game.Snapshot{}, false
	}
	return e.game.Snapshot(), true
}

// ListRooms returns a summary of every live room, for GET /rooms (§6.5).
func (s *Supervisor) ListRooms() []RoomSummary {
	s.mu.Lock()
	ids := make([]types.RoomIDType, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	summaries := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		if sum, ok := s.RoomStats(id); ok {
			summaries = append(summaries, sum)
		}
	}
	return summaries
}

// RoomStats returns one room's summary, for GET /rooms/:id/stats (§6.5).
func (s *Supervisor) RoomStats(roomID types.RoomIDType) (RoomSummary, bool) {
	e, ok := s.lookup(roomID)
	if !ok {
		return RoomSummary{}, false
	}
	return RoomSummary{
		RoomID:      roomID,
		HostName:    string(e.room.HostName()),
		SeatCount:   e.room.SeatCount(),
		Phase:       e.game.Snapshot().Phase,
		Started:     e.room.Started(),
		RoundNumber: e.game.Snapshot().RoundNumber,
	}, true
}

// RecentEvents returns the last N broadcast events retained for roomID's
// debug surface (SUPPLEMENTED FEATURES #5: memory-only event log ring).
func (s *Supervisor) RecentEvents(roomID types.RoomIDType) ([]eventlog.Entry, bool) {
	e, ok := s.lookup(roomID)
	if !ok || e.ring == nil {
		return nil, false
	}
	return e.ring.Entries(), true
}

func (s *Supervisor) lookup(roomID types.RoomIDType) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rooms[roomID]
	return e, ok
}

func (s *Supervisor) buildRoom(id types.RoomIDType) *entry {
	r := room.New(id)
	actions := queue.NewActionQueue()
	g := game.New(r, s.engine, actions)
	ring := eventlog.NewRing(s.cfg.EventLogRingCap)
	b := broadcast.New(r, s.registry, s.messageQueue, loggingSender{inner: s.sender, ring: ring})

	handle := bot.NewRoomHandle(r, g, actions)
	delay := bot.ThinkDelay{
		DeclareMin: s.cfg.BotDeclareDelayMin,
		DeclareMax: s.cfg.BotDeclareDelayMax,
		RedealMin:  s.cfg.BotRedealDelayMin,
		RedealMax:  s.cfg.BotRedealDelayMax,
	}
	actor := bot.NewActor(id, handle, s.strategy, delay)
	observer := &roomPhaseObserver{actor: actor, roomID: id, supervisor: s}

	machine := game.NewStateMachine(id, g, actions, b, observer)

	return &entry{
		room:        r,
		game:        g,
		actions:     actions,
		broadcaster: b,
		actor:       actor,
		machine:     machine,
		ring:        ring,
		createdAt:   time.Now(),
	}
}

// startRoom launches the single driver goroutine for e (§5: "one driver
// loop that owns the GameStateMachine").
func (s *Supervisor) startRoom(ctx context.Context, e *entry) {
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	go e.machine.Run(runCtx)
}

func (s *Supervisor) newRoomID() types.RoomIDType {
	for {
		buf := make([]byte, 6)
		_, _ = rand.Read(buf)
		b := make([]byte, 6)
		for i, v := range buf {
			b[i] = roomIDAlphabet[int(v)%len(roomIDAlphabet)]
		}
		id := types.RoomIDType(b)
		if _, exists := s.rooms[id]; !exists {
			return id
		}
	}
}

// roomPhaseObserver implements game.PhaseObserver for one room: it forwards
// every phase transition to the room's BotActor as before, and additionally
// arms the post-GameOver cleanup grace period (§4.6.8) the moment the game
// reaches its terminal phase.
type roomPhaseObserver struct {
	actor      *bot.Actor
	roomID     types.RoomIDType
	supervisor *Supervisor
}

func (o *roomPhaseObserver) OnPhaseChange(ctx context.Context, phase string, turnNumber int, botSeats []types.PlayerName) {
	o.actor.OnPhaseChange(ctx, phase, turnNumber, botSeats)
	if phase == (game.GameOverPhase{}).Name() {
		o.supervisor.scheduleGameOverCleanup(o.roomID)
	}
}

func (o *roomPhaseObserver) CancelPending() {
	o.actor.CancelPending()
}

// loggingSender wraps the transport Sender so every broadcast event is
// retained in the room's ring buffer regardless of delivery outcome
// (SUPPLEMENTED FEATURES #5).
type loggingSender struct {
	inner broadcast.Sender
	ring  *eventlog.Ring
}

func (l loggingSender) Send(transportID types.ClientIDType, event game.Event) error {
	l.ring.Record(event)
	return l.inner.Send(transportID, event)
}
