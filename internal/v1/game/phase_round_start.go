package game

import (
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// RoundStartDelay is the fixed pause before Declaration begins (§4.6.3),
// giving clients time to render the new round's deal.
const RoundStartDelay = 5 * time.Second

// RoundStartPhase is a brief, player-inert announcement phase (§4.6.3): no
// action advances it except its own timer (leave/disconnect aside, which
// the supervisor handles above this layer).
type RoundStartPhase struct{}

func (RoundStartPhase) Name() string { return "round_start" }

func (RoundStartPhase) OnEnter(g *Game) []Event {
	event := newEvent("phase_change", map[string]any{
		"phase":        "round_start",
		"starter":      string(seatNameOrEmpty(g, g.StarterIdx)),
		"round_number": g.RoundNumber,
	})

	if g.Actions != nil {
		g.roundStartTimer = time.AfterFunc(RoundStartDelay, func() {
			g.Actions.Enqueue(queue.Action{Type: actionRoundStartTimeout})
		})
	}
	return []Event{event}
}

func (RoundStartPhase) OnExit(g *Game) {
	if g.roundStartTimer != nil {
		g.roundStartTimer.Stop()
		g.roundStartTimer = nil
	}
}

func (RoundStartPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	return set.New[queue.ActionType](ActionLeaveRoom)
}

func (RoundStartPhase) Handle(g *Game, action queue.Action) HandleResult {
	switch action.Type {
	case actionRoundStartTimeout:
		return HandleResult{Accepted: true, NextPhase: DeclarationPhase{}}
	case ActionLeaveRoom:
		return WaitingPhase{}.Handle(g, action)
	default:
		return rejected(ReasonWrongPhase)
	}
}

func seatNameOrEmpty(g *Game, idx types.SeatIndex) types.PlayerName {
	if seat := g.seatByIndex(idx); seat != nil {
		return seat.Name
	}
	return ""
}
