package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// MaxRedealMultiplier caps how many times a round can be re-dealt (§4.6.2,
// resolved Open Question: capped at 4).
const MaxRedealMultiplier = 4

// PreparationPhase deals hands and walks the weak-hand redeal offer
// (§4.6.2) before the round actually starts.
type PreparationPhase struct{}

func (PreparationPhase) Name() string { return "preparation" }

func (PreparationPhase) OnEnter(g *Game) []Event {
	g.RoundNumber++
	g.TurnNumber = 0

	seats := g.Room.Seats()
	for _, s := range seats {
		if s == nil {
			continue
		}
		s.Declared = 0
		s.CapturedPiles = 0
	}

	hands := g.Engine.Deal(types.SeatCount)
	for i, s := range seats {
		if s != nil {
			s.Hand = hands[i]
		}
	}

	g.StarterIdx = g.determineStarter()
	g.CurrentPlayerIdx = g.StarterIdx
	g.TurnHistoryThisRound = nil

	events := []Event{newEvent("phase_change", map[string]any{
		"phase":        "preparation",
		"round_number": g.RoundNumber,
	})}

	weak := g.weakSeats()
	if len(weak) == 0 {
		g.Redeal = nil
		return append(events, g.transitionToRoundStart()...)
	}

	g.Redeal = &RedealOffer{WeakSeats: weak, Cursor: 0, Multiplier: g.RedealMultiplier}
	events = append(events, g.offerRedealEvent())
	return events
}

func (PreparationPhase) OnExit(g *Game) {}

func (PreparationPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	actions := set.New[queue.ActionType](ActionLeaveRoom)
	if g.Redeal != nil && g.currentRedealDecider() == player {
		actions.Insert(ActionRedealDecision)
	}
	return actions
}

func (PreparationPhase) Handle(g *Game, action queue.Action) HandleResult {
	if action.Type != ActionRedealDecision {
		if action.Type == ActionLeaveRoom {
			return WaitingPhase{}.Handle(g, action)
		}
		return rejected(ReasonWrongPhase)
	}
	if g.Redeal == nil {
		return rejected(ReasonWrongPhase)
	}
	decider := g.currentRedealDecider()
	if decider != action.PlayerName {
		return rejected(ReasonNotYourDecision)
	}

	accept, _ := action.Payload["accept"].(bool)
	if accept {
		if g.RedealMultiplier < MaxRedealMultiplier {
			g.RedealMultiplier++
		}
		g.StarterIdx = g.seatIndexByName(decider)
		g.CurrentPlayerIdx = g.StarterIdx

		hands := g.Engine.Deal(types.SeatCount)
		seats := g.Room.Seats()
		for i, s := range seats {
			if s != nil {
				s.Hand = hands[i]
			}
		}

		weak := g.weakSeats()
		if len(weak) == 0 {
			g.Redeal = nil
			return HandleResult{Accepted: true, Events: append([]Event{
				newEvent("phase_change", map[string]any{"phase": "preparation", "redeal_multiplier": g.RedealMultiplier}),
			}, g.transitionToRoundStart()...), NextPhase: g.pendingNextPhase}
		}
		g.Redeal = &RedealOffer{WeakSeats: weak, Cursor: 0, Multiplier: g.RedealMultiplier}
		return accepted(
			newEvent("phase_change", map[string]any{"phase": "preparation", "redeal_multiplier": g.RedealMultiplier}),
			g.offerRedealEvent(),
		)
	}

	g.Redeal.Cursor++
	if g.Redeal.Cursor >= len(g.Redeal.WeakSeats) {
		g.Redeal = nil
		return HandleResult{Accepted: true, Events: g.transitionToRoundStart(), NextPhase: g.pendingNextPhase}
	}
	return accepted(g.offerRedealEvent())
}

// determineStarter picks the round's first player (§4.6.2): round 1 goes
// to the unique holder of the red general, else the lowest slot; later
// rounds go to the previous round's last-turn winner, unless the round was
// preceded by an accepted redeal, in which case the accepter starts (that
// assignment happens directly in Handle above).
func (g *Game) determineStarter() types.SeatIndex {
	if g.RoundNumber == 1 {
		seats := g.Room.Seats()
		redGeneralHolders := 0
		holder := types.NoSeat
		for i, s := range seats {
			if s == nil {
				continue
			}
			for _, p := range s.Hand {
				if p.IsRedGeneral() {
					redGeneralHolders++
					holder = types.SeatIndex(i)
				}
			}
		}
		if redGeneralHolders == 1 {
			return holder
		}
		return 0
	}
	if len(g.TurnHistoryThisRound) > 0 {
		last := g.TurnHistoryThisRound[len(g.TurnHistoryThisRound)-1]
		return g.seatIndexByName(last.WinnerName)
	}
	return g.StarterIdx
}

func (g *Game) weakSeats() []types.SeatIndex {
	seats := g.Room.Seats()
	var weak []types.SeatIndex
	for i, s := range seats {
		if s != nil && g.Engine.IsWeak(s.Hand) {
			weak = append(weak, types.SeatIndex(i))
		}
	}
	return weak
}

func (g *Game) currentRedealDecider() types.PlayerName {
	if g.Redeal == nil || g.Redeal.Cursor >= len(g.Redeal.WeakSeats) {
		return ""
	}
	idx := g.Redeal.WeakSeats[g.Redeal.Cursor]
	if seat := g.seatByIndex(idx); seat != nil {
		return seat.Name
	}
	return ""
}

func (g *Game) offerRedealEvent() Event {
	decider := g.currentRedealDecider()
	return newEvent("phase_change", map[string]any{
		"phase":             "preparation",
		"redeal_offer_to":   string(decider),
		"redeal_multiplier": g.RedealMultiplier,
	})
}

func (g *Game) transitionToRoundStart() []Event {
	g.pendingNextPhase = RoundStartPhase{}
	return nil
}

func (g *Game) seatIndexByName(name types.PlayerName) types.SeatIndex {
	idx, _ := g.Room.FindSeat(name)
	return idx
}
