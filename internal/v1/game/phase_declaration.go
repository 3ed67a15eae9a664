package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// DeclarationPhase collects each seat's pile prediction in turn order
// (§4.6.4): starter first, then clockwise, with two house rules enforced
// on top of the raw 0..8 range.
type DeclarationPhase struct{}

func (DeclarationPhase) Name() string { return "declaration" }

func (DeclarationPhase) OnEnter(g *Game) []Event {
	seats := g.Room.Seats()
	for _, s := range seats {
		if s != nil {
			s.Declared = -1 // not yet declared this round; distinct from a real 0
		}
	}

	order := make([]types.SeatIndex, 0, types.SeatCount)
	idx := g.StarterIdx
	for i := 0; i < types.SeatCount; i++ {
		order = append(order, idx)
		idx = nextClockwise(idx)
	}
	g.DeclarationOrder = order
	g.declareCursor = 0
	g.CurrentPlayerIdx = order[0]

	return []Event{newEvent("phase_change", map[string]any{
		"phase":         "declaration",
		"current_player": string(seatNameOrEmpty(g, order[0])),
	})}
}

func (DeclarationPhase) OnExit(g *Game) {}

func (DeclarationPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	actions := set.New[queue.ActionType](ActionLeaveRoom)
	if g.currentDeclarer() == player {
		actions.Insert(ActionDeclare)
	}
	return actions
}

func (DeclarationPhase) Handle(g *Game, action queue.Action) HandleResult {
	if action.Type == ActionLeaveRoom {
		return WaitingPhase{}.Handle(g, action)
	}
	if action.Type != ActionDeclare {
		return rejected(ReasonWrongPhase)
	}
	if g.currentDeclarer() != action.PlayerName {
		return rejected(ReasonNotYourTurn)
	}

	valueF, _ := action.Payload["value"].(float64)
	value := int(valueF)
	if value < 0 || value > 8 {
		return rejected(ReasonInvalidRequest)
	}

	seat := g.seatByIndex(g.DeclarationOrder[g.declareCursor])
	isLast := g.declareCursor == types.SeatCount-1
	if isLast {
		total := g.declaredTotal() + value
		if total == 8 {
			return rejected(ReasonTotalCannotEqual8)
		}
	}
	if value == 0 && seat.ZeroDeclaresInARow >= 2 {
		return rejected(ReasonNoThirdConsecutiveZero)
	}

	seat.Declared = value
	if value == 0 {
		seat.ZeroDeclaresInARow++
	} else {
		seat.ZeroDeclaresInARow = 0
	}

	events := []Event{newEvent("phase_change", map[string]any{
		"phase": "declaration",
		"players": g.Snapshot().Players,
	})}

	g.declareCursor++
	if g.declareCursor >= types.SeatCount {
		return HandleResult{Accepted: true, Events: events, NextPhase: TurnPhase{}}
	}
	g.CurrentPlayerIdx = g.DeclarationOrder[g.declareCursor]
	return HandleResult{Accepted: true, Events: events}
}

func (g *Game) currentDeclarer() types.PlayerName {
	if g.declareCursor >= len(g.DeclarationOrder) {
		return ""
	}
	return seatNameOrEmpty(g, g.DeclarationOrder[g.declareCursor])
}

func (g *Game) declaredTotal() int {
	total := 0
	seats := g.Room.Seats()
	for _, s := range seats {
		if s != nil && s.Declared > 0 {
			total += s.Declared
		}
	}
	return total
}
