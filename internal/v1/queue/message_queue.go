// Package queue implements the two per-room FIFOs described in §4.4 and
// §4.5: the MessageQueue that buffers critical events for disconnected
// seats, and the ActionQueue that serializes client actions for the
// single-consumer state machine driver.
package queue

import (
	"sync"

	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// CriticalEventTypes is the closed set of event types that get buffered
// for a disconnected seat (§4.4): anything else is simply dropped when the
// recipient isn't listening.
var CriticalEventTypes = set.New[string](
	"phase_change",
	"turn_resolved",
	"round_complete",
	"score_update",
	"game_ended",
	"host_changed",
)

// DefaultQueueCap is the soft cap on buffered events per seat (§4.4).
const DefaultQueueCap = 256

// Event is the minimal shape MessageQueue buffers. It is a separate type
// from internal/v1/game.Event (EventType instead of Type, no RoomID), so
// callers convert when enqueueing.
type Event struct {
	Sequence  int64
	EventType string
	Data      map[string]any
}

// QueuedMessage wraps a buffered Event with its enqueue time (§3).
type QueuedMessage struct {
	Sequence    int64
	EventType   string
	Data        map[string]any
	EnqueuedAt  int64 // unix nanos; stamped by caller, not queue.Now()-derived
}

type seatKey struct {
	room types.RoomIDType
	name types.PlayerName
}

// MessageQueue buffers critical events per (room, seat) while a human is
// disconnected (§4.4). It is destroyed along with its room.
type MessageQueue struct {
	mu       sync.Mutex
	cap      int
	buffers  map[seatKey][]QueuedMessage
}

// NewMessageQueue creates a MessageQueue with the given soft cap per seat.
// cap <= 0 falls back to DefaultQueueCap.
func NewMessageQueue(cap int) *MessageQueue {
	if cap <= 0 {
		cap = DefaultQueueCap
	}
	return &MessageQueue{
		cap:     cap,
		buffers: make(map[seatKey][]QueuedMessage),
	}
}

// Queue appends event to (roomID, playerName)'s buffer if its type is
// critical. Returns false (no-op) for non-critical types. On overflow,
// enough of the oldest messages are dropped to make room for a single
// synthetic resync_required marker, which is always the new oldest entry
// (§8): a disconnected seat that later resyncs can never drain past it
// without knowing it missed something.
func (q *MessageQueue) Queue(roomID types.RoomIDType, playerName types.PlayerName, msg QueuedMessage) bool {
	if !CriticalEventTypes.Has(msg.EventType) {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := seatKey{room: roomID, name: playerName}
	buf := q.buffers[key]
	buf = append(buf, msg)

	if len(buf) > q.cap {
		// Reserve one slot for the marker before trimming, so prepending it
		// doesn't push the buffer back over cap and evict itself as the new
		// oldest entry.
		keep := q.cap - 1
		if keep < 0 {
			keep = 0
		}
		buf = buf[len(buf)-keep:]
		buf = append([]QueuedMessage{{
			EventType: "resync_required",
			Data:      map[string]any{},
		}}, buf...)
		metrics.MessageQueueDrops.WithLabelValues(string(roomID)).Inc()
	}

	q.buffers[key] = buf
	return true
}

// Drain returns and clears the buffered messages for (roomID, playerName)
// in FIFO order.
func (q *MessageQueue) Drain(roomID types.RoomIDType, playerName types.PlayerName) []QueuedMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := seatKey{room: roomID, name: playerName}
	buf := q.buffers[key]
	delete(q.buffers, key)
	return buf
}

// DestroyRoom drops every buffer belonging to roomID, called when a room
// is torn down (§4.4: "destroyed with room").
func (q *MessageQueue) DestroyRoom(roomID types.RoomIDType) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key := range q.buffers {
		if key.room == roomID {
			delete(q.buffers, key)
		}
	}
}
