package bot

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// Strategy is the opaque decision-maker BotActor invokes whenever a phase
// expects an action from a bot-controlled seat (§4.10). It sees the room
// only through handle — the public snapshot plus its own seat's hand,
// never Game or Room internals directly.
type Strategy interface {
	ChooseAction(phase string, handle RoomHandle, seat types.PlayerName) (queue.ActionType, map[string]any)
}
