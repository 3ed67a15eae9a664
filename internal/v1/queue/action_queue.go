package queue

import (
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// ActionType is the closed set of client-originated actions a
// GameStateMachine can receive (§6.1). Validation of which type a phase
// accepts lives in internal/v1/game; the queue itself is type-agnostic.
type ActionType string

// Action is one client-originated command, stamped with arrival order
// (§4.5). Sequence is assigned at Enqueue and is the sole ordering
// authority for the state machine driver — it does not reflect wall-clock
// receipt time, only acceptance order into this queue.
type Action struct {
	Sequence   int64
	Type       ActionType
	PlayerName types.PlayerName
	Payload    map[string]any
	ReceivedAt time.Time
}

// ActionQueue is an unbounded per-room FIFO with a single consumer: the
// state machine driver loop (§4.5, §5). Producers are the transport reader
// tasks for that room and the room's bot actor; they only ever call Enqueue.
type ActionQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []Action
	nextSeq  int64
	closed   bool
}

// NewActionQueue creates an empty queue.
func NewActionQueue() *ActionQueue {
	q := &ActionQueue{nextSeq: 1}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends action, assigns it the next sequence number, and wakes
// the consumer. Returns the assigned sequence number.
func (q *ActionQueue) Enqueue(action Action) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}
	action.Sequence = q.nextSeq
	q.nextSeq++
	q.buf = append(q.buf, action)
	q.cond.Signal()
	return action.Sequence
}

// Dequeue blocks until an action is available or the queue is closed.
// Returns ok=false once closed with nothing left to drain.
func (q *ActionQueue) Dequeue() (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return Action{}, false
	}
	action := q.buf[0]
	q.buf = q.buf[1:]
	return action, true
}

// Close stops the queue; any blocked Dequeue returns once the remaining
// buffer (if any) is drained. Called when a room is destroyed.
func (q *ActionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len reports the current backlog depth, used by the ActionQueueDepth
// gauge.
func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
