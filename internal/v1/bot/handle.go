package bot

import (
	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// RoomHandle is the narrow view BotActor gets of a room (§9's "handle
// indirection": no raw *game.Game or *room.Room pointer crosses this
// boundary). It exposes the public snapshot plus the one piece of private
// information a bot genuinely needs — its own seat's hand — without
// handing over write access to anything.
type RoomHandle interface {
	Snapshot() game.Snapshot
	Hand(seat types.PlayerName) []rules.Piece
	Enqueue(action queue.Action) int64
}

// gameRoomHandle is the production RoomHandle, backed directly by the
// room's live Game/Room/ActionQueue. Constructed once per room by the
// supervisor alongside the StateMachine.
type gameRoomHandle struct {
	room    *room.Room
	game    *game.Game
	actions *queue.ActionQueue
}

// NewRoomHandle wraps r/g/actions into the handle BotActor consumes.
func NewRoomHandle(r *room.Room, g *game.Game, actions *queue.ActionQueue) RoomHandle {
	return &gameRoomHandle{room: r, game: g, actions: actions}
}

func (h *gameRoomHandle) Snapshot() game.Snapshot { return h.game.Snapshot() }

func (h *gameRoomHandle) Hand(seat types.PlayerName) []rules.Piece {
	_, s := h.room.FindSeat(seat)
	if s == nil {
		return nil
	}
	hand := make([]rules.Piece, len(s.Hand))
	copy(hand, s.Hand)
	return hand
}

func (h *gameRoomHandle) Enqueue(action queue.Action) int64 {
	return h.actions.Enqueue(action)
}
