package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// ScoreCap and RoundCap are the two game-ending conditions (§4.6.7).
const (
	ScoreCap = 50
	RoundCap = 20
)

// ScoringPhase tallies the round's score for every seat and decides
// whether the game is over (§4.6.7).
type ScoringPhase struct{}

func (ScoringPhase) Name() string { return "scoring" }

func (ScoringPhase) OnEnter(g *Game) []Event {
	seats := g.Room.Seats()
	roundScores := make(map[string]int, types.SeatCount)
	for _, s := range seats {
		if s == nil {
			continue
		}
		delta := g.Engine.Score(s.Declared, s.CapturedPiles, g.RedealMultiplier)
		s.Score += delta
		roundScores[string(s.Name)] = delta
	}
	g.RedealMultiplier = 1

	events := []Event{
		newEvent("score_update", map[string]any{"round_scores": roundScores}),
		newEvent("round_complete", map[string]any{"round_number": g.RoundNumber}),
	}

	if over, winners := g.checkGameOver(); over {
		g.pendingNextPhase = GameOverPhase{}
		_ = winners
	} else {
		g.pendingNextPhase = PreparationPhase{}
	}
	return events
}

func (ScoringPhase) OnExit(g *Game) {}

func (ScoringPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	return set.New[queue.ActionType](ActionLeaveRoom)
}

func (ScoringPhase) Handle(g *Game, action queue.Action) HandleResult {
	if action.Type == ActionLeaveRoom {
		return WaitingPhase{}.Handle(g, action)
	}
	return rejected(ReasonWrongPhase)
}

func (g *Game) checkGameOver() (bool, []types.PlayerName) {
	if g.RoundNumber < RoundCap {
		seats := g.Room.Seats()
		hasWinner := false
		for _, s := range seats {
			if s != nil && s.Score >= ScoreCap {
				hasWinner = true
			}
		}
		if !hasWinner {
			return false, nil
		}
	}
	return true, g.winners()
}

func (g *Game) winners() []types.PlayerName {
	seats := g.Room.Seats()
	best := -1 << 30
	for _, s := range seats {
		if s != nil && s.Score > best {
			best = s.Score
		}
	}
	var winners []types.PlayerName
	for _, s := range seats {
		if s != nil && s.Score == best {
			winners = append(winners, s.Name)
		}
	}
	return winners
}
