package game

import (
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// TurnResultsAnimationTimeout is the fallback used when the turn's winner
// is a bot or disconnected and so never sends animation_complete (§4.6.6).
const TurnResultsAnimationTimeout = 3 * time.Second

// TurnResultsPhase determines the turn's winner, awards the captured
// pile, and waits for the winning client's animation to finish before
// moving on (§4.6.6).
type TurnResultsPhase struct{}

func (TurnResultsPhase) Name() string { return "turn_results" }

func (TurnResultsPhase) OnEnter(g *Game) []Event {
	winnerIdx, winnerPlay := g.resolveTurnWinner()
	winnerSeat := g.seatByIndex(winnerIdx)

	required := 0
	if g.RequiredPieceCount != nil {
		required = *g.RequiredPieceCount
	}
	if winnerSeat != nil {
		winnerSeat.CapturedPiles += required
	}
	g.TurnHistoryThisRound = append(g.TurnHistoryThisRound, TurnRecord{
		WinnerName:    winnerSeat.Name,
		RequiredCount: required,
		Plays:         g.CurrentPlays,
	})
	g.CurrentPlayerIdx = winnerIdx

	event := newEvent("turn_resolved", map[string]any{
		"winner":        string(seatNameOrEmpty(g, winnerIdx)),
		"captured":      required,
		"winning_play":  winnerPlay,
	})

	if g.Actions != nil && (winnerSeat == nil || winnerSeat.IsBot || !winnerSeat.IsConnected) {
		g.turnResultsTimer = time.AfterFunc(TurnResultsAnimationTimeout, func() {
			g.Actions.Enqueue(queue.Action{Type: actionTurnResultsTimeout})
		})
	}

	return []Event{event}
}

func (TurnResultsPhase) OnExit(g *Game) {
	if g.turnResultsTimer != nil {
		g.turnResultsTimer.Stop()
		g.turnResultsTimer = nil
	}
}

func (TurnResultsPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	actions := set.New[queue.ActionType](ActionLeaveRoom)
	if seatNameOrEmpty(g, g.CurrentPlayerIdx) == player {
		actions.Insert(ActionAnimationComplete)
	}
	return actions
}

func (TurnResultsPhase) Handle(g *Game, action queue.Action) HandleResult {
	switch action.Type {
	case ActionLeaveRoom:
		return WaitingPhase{}.Handle(g, action)
	case actionTurnResultsTimeout:
		return HandleResult{Accepted: true, NextPhase: g.afterTurnResults()}
	case ActionAnimationComplete:
		if seatNameOrEmpty(g, g.CurrentPlayerIdx) != action.PlayerName {
			return rejected(ReasonNotYourTurn)
		}
		return HandleResult{Accepted: true, NextPhase: g.afterTurnResults()}
	default:
		return rejected(ReasonWrongPhase)
	}
}

func (g *Game) afterTurnResults() Phase {
	seats := g.Room.Seats()
	for _, s := range seats {
		if s != nil && len(s.Hand) > 0 {
			return TurnPhase{}
		}
	}
	return ScoringPhase{}
}

// resolveTurnWinner picks the winning play among g.CurrentPlays (§4.6.6):
// among plays matching the first play's classification, the highest-value
// one wins, ties going to whichever was played earliest; if no other play
// shares the first play's type, the first play wins outright.
func (g *Game) resolveTurnWinner() (types.SeatIndex, string) {
	if len(g.CurrentPlays) == 0 {
		return types.NoSeat, ""
	}
	first := g.CurrentPlays[0]
	firstType := g.Engine.Classify(first)

	best := first
	for _, play := range g.CurrentPlays[1:] {
		if g.Engine.Classify(play) != firstType {
			continue
		}
		if g.Engine.Compare(play, best) == rules.AWins {
			best = play
		}
	}

	idx, _ := g.Room.FindSeat(types.PlayerName(best.PlayerName))
	return idx, best.PlayerName
}
