package game

import "github.com/andynenth/liap-tui-server/internal/v1/queue"

// Action types a phase may accept, covering the Room and Game categories
// of §6.1 (the Connection and Lobby categories are handled above the
// state machine, in internal/v1/transport and internal/v1/supervisor).
const (
	ActionAddBot         queue.ActionType = "add_bot"
	ActionRemovePlayer   queue.ActionType = "remove_player"
	ActionLeaveRoom      queue.ActionType = "leave_room"
	ActionStartGame      queue.ActionType = "start_game"
	ActionRedealDecision queue.ActionType = "redeal_decision"
	ActionDeclare        queue.ActionType = "declare"
	ActionPlay           queue.ActionType = "play"
	ActionAnimationComplete queue.ActionType = "animation_complete"
	ActionPlayerReady    queue.ActionType = "player_ready"

	// Internal timer-fired signals (§5, §4.6.3, §4.6.6). These never
	// arrive from a transport; they are enqueued by time.AfterFunc
	// callbacks so a firing timer is processed in the same total order
	// as every client action instead of racing the driver loop directly.
	actionRoundStartTimeout  queue.ActionType = "__round_start_timeout"
	actionTurnResultsTimeout queue.ActionType = "__turn_results_timeout"
)
