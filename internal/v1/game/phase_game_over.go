package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// RoomCleanupGrace is the default post-GameOver grace period in seconds
// (§4.6.8). The supervisor does not read this constant; it takes the
// duration from config.Config.RoomCleanupGrace (default 30s).
const RoomCleanupGrace = 30

// GameOverPhase is terminal: it broadcasts final standings and accepts
// nothing but leave_room (and disconnects, handled by the supervisor).
type GameOverPhase struct{}

func (GameOverPhase) Name() string { return "game_over" }

func (GameOverPhase) OnEnter(g *Game) []Event {
	seats := g.Room.Seats()
	standings := make([]map[string]any, 0, types.SeatCount)
	for _, s := range seats {
		if s == nil {
			continue
		}
		standings = append(standings, map[string]any{
			"name":  string(s.Name),
			"score": s.Score,
		})
	}
	_, winners := g.checkGameOver()
	winnerNames := make([]string, len(winners))
	for i, w := range winners {
		winnerNames[i] = string(w)
	}

	return []Event{newEvent("game_ended", map[string]any{
		"standings": standings,
		"winners":   winnerNames,
	})}
}

func (GameOverPhase) OnExit(g *Game) {}

func (GameOverPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	return set.New[queue.ActionType](ActionLeaveRoom)
}

func (GameOverPhase) Handle(g *Game, action queue.Action) HandleResult {
	if action.Type == ActionLeaveRoom {
		return WaitingPhase{}.Handle(g, action)
	}
	return rejected(ReasonWrongPhase)
}
