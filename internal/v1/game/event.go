package game

import "github.com/andynenth/liap-tui-server/internal/v1/types"

// Event is a single server-to-client fact emitted by a phase transition
// (§3, §6.2). Sequence is assigned by the broadcaster, not here — a phase
// only decides what happened and what data it carries.
type Event struct {
	Sequence int64
	Type     string
	RoomID   types.RoomIDType
	Data     map[string]any
}

func newEvent(eventType string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{Type: eventType, Data: data}
}
