package game

import (
	"strconv"

	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// WaitingPhase is the lobby-within-a-room phase (§4.6.1): seats fill up,
// the host may add bots or remove players, and start_game is the only way
// out.
type WaitingPhase struct{}

func (WaitingPhase) Name() string { return "waiting" }

func (WaitingPhase) OnEnter(g *Game) []Event { return nil }

func (WaitingPhase) OnExit(g *Game) {}

func (WaitingPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	actions := set.New[queue.ActionType](ActionLeaveRoom)
	if g.Room.IsHost(player) {
		actions.Insert(ActionAddBot, ActionRemovePlayer, ActionStartGame)
	}
	return actions
}

func (WaitingPhase) Handle(g *Game, action queue.Action) HandleResult {
	switch action.Type {
	case ActionAddBot:
		if !g.Room.IsHost(action.PlayerName) {
			return rejected(ReasonNotHost)
		}
		name, _ := action.Payload["name"].(string)
		if name == "" {
			name = nextBotName(g.Room)
		}
		if _, err := g.Room.AddPlayer(types.PlayerName(name), true); err != nil {
			return rejected(roomErrCode(err))
		}
		return accepted(newEvent("room_update", map[string]any{"players": g.Snapshot().Players}))

	case ActionRemovePlayer:
		if !g.Room.IsHost(action.PlayerName) {
			return rejected(ReasonNotHost)
		}
		target, _ := action.Payload["name"].(string)
		if types.PlayerName(target) == action.PlayerName {
			return rejected(ReasonInvalidRequest)
		}
		result, err := g.Room.RemovePlayer(types.PlayerName(target))
		if err != nil {
			return rejected(ReasonNotFound)
		}
		events := []Event{newEvent("room_update", map[string]any{"players": g.Snapshot().Players})}
		if result.WasHost {
			if newHost := g.Room.MigrateHost(); newHost != "" {
				events = append(events, newEvent("host_changed", map[string]any{"host_name": string(newHost)}))
			}
		}
		return accepted(events...)

	case ActionLeaveRoom:
		result, err := g.Room.RemovePlayer(action.PlayerName)
		if err != nil {
			return rejected(ReasonNotFound)
		}
		events := []Event{newEvent("room_update", map[string]any{"players": g.Snapshot().Players})}
		if result.WasHost {
			if newHost := g.Room.MigrateHost(); newHost != "" {
				events = append(events, newEvent("host_changed", map[string]any{"host_name": string(newHost)}))
			}
		}
		return accepted(events...)

	case ActionStartGame:
		if !g.Room.IsHost(action.PlayerName) {
			return rejected(ReasonNotHost)
		}
		if g.Room.SeatCount() != types.SeatCount {
			return rejected(ReasonNeedFourPlayers)
		}
		g.Room.MarkStarted()
		return acceptedWithTransition(PreparationPhase{})

	default:
		return rejected(ReasonWrongPhase)
	}
}

func nextBotName(r *room.Room) string {
	seats := r.Seats()
	n := 1
	for {
		name := "Bot " + strconv.Itoa(n)
		taken := false
		for _, s := range seats {
			if s != nil && string(s.Name) == name {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
		n++
	}
}

func roomErrCode(err error) Reason {
	if re, ok := err.(*room.Error); ok {
		return Reason(re.Code)
	}
	return ReasonInvalidRequest
}
