// Package broadcast implements the fan-out and addressing rules of §4.8:
// assigning per-room sequence numbers, delivering to connected humans,
// skipping bots (they are in-process subscribers, not transport
// recipients), and queueing for disconnected humans.
package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/connection"
	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// Sender is the thin transport-facing interface a Broadcaster delivers
// through. internal/v1/transport implements it over a gorilla/websocket
// connection; tests can fake it directly.
type Sender interface {
	// Send writes one event to transportID. An error means the transport
	// is gone or backed up — the caller must treat it as a disconnect for
	// this event only, never as a fatal condition for the whole fan-out.
	Send(transportID types.ClientIDType, event game.Event) error
}

// Broadcaster implements game.Broadcaster against a live Room roster, a
// ConnectionRegistry, and a MessageQueue (§4.8).
type Broadcaster struct {
	room     *room.Room
	registry *connection.Registry
	queue    *queue.MessageQueue
	sender   Sender

	mu  sync.Mutex
	seq int64
}

// New creates a Broadcaster for one room.
func New(r *room.Room, registry *connection.Registry, mq *queue.MessageQueue, sender Sender) *Broadcaster {
	return &Broadcaster{room: r, registry: registry, queue: mq, sender: sender}
}

// Broadcast assigns each event the next sequence number (monotonic,
// gapless, shared across all events in this room) and delivers it to
// every seat per §4.8's per-recipient rules.
func (b *Broadcaster) Broadcast(roomID types.RoomIDType, events []game.Event) {
	for i := range events {
		events[i].Sequence = atomic.AddInt64(&b.seq, 1)
		events[i].RoomID = roomID
		b.deliverToAllSeats(roomID, events[i])
	}
}

func (b *Broadcaster) deliverToAllSeats(roomID types.RoomIDType, event game.Event) {
	start := time.Now()
	outcome := "delivered"
	defer func() {
		metrics.BroadcastDuration.WithLabelValues(event.Type).Observe(time.Since(start).Seconds())
	}()

	seats := b.room.Seats()
	for _, seat := range seats {
		if seat == nil {
			continue
		}
		if seat.IsBot {
			// Bots are in-process subscribers (§4.10); they read the
			// phase_change stream that fed this broadcast, not a
			// transport delivery.
			continue
		}
		if seat.IsConnected {
			transportID, ok := b.registry.LookupTransport(roomID, seat.Name)
			if ok {
				if err := b.sender.Send(transportID, event); err == nil {
					metrics.BroadcastFanout.WithLabelValues("delivered").Inc()
					continue
				}
			}
			// Send failed, or no transport is registered despite
			// is_connected — treat as disconnected for this event.
			outcome = "queued"
			b.queueFor(roomID, seat.Name, event)
			metrics.BroadcastFanout.WithLabelValues("queued").Inc()
			continue
		}
		outcome = "queued"
		b.queueFor(roomID, seat.Name, event)
		metrics.BroadcastFanout.WithLabelValues("queued").Inc()
	}
	_ = outcome
}

func (b *Broadcaster) queueFor(roomID types.RoomIDType, player types.PlayerName, event game.Event) {
	b.queue.Queue(roomID, player, queue.QueuedMessage{
		Sequence:  event.Sequence,
		EventType: event.Type,
		Data:      event.Data,
	})
}

// Unicast sends a direct response (typically an error{code,message}) to
// whatever transport is currently registered for player, bypassing
// sequence assignment (§4.8: "no sequence bump, direct error responses").
func (b *Broadcaster) Unicast(roomID types.RoomIDType, player types.PlayerName, errorCode, message string) {
	transportID, ok := b.registry.LookupTransport(roomID, player)
	if !ok {
		return
	}
	event := game.Event{
		Type: "error",
		Data: map[string]any{"code": errorCode, "message": message},
	}
	_ = b.sender.Send(transportID, event)
}

// DeliverQueuedThenResume drains player's buffered messages and sends them
// in order before any new broadcast can reach them (§4.8 reconnect rule).
// Callers must hold off re-registering the transport for new broadcasts
// until this returns, or route both through the same goroutine as this
// call to guarantee ordering.
func (b *Broadcaster) DeliverQueuedThenResume(roomID types.RoomIDType, player types.PlayerName, transportID types.ClientIDType) {
	drained := b.queue.Drain(roomID, player)
	for _, msg := range drained {
		_ = b.sender.Send(transportID, game.Event{
			Sequence: msg.Sequence,
			Type:     msg.EventType,
			RoomID:   roomID,
			Data:     msg.Data,
		})
	}
}
