package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// TurnPhase collects one play from each seat in turn order (§4.6.5). The
// first player to act in a turn sets required_piece_count for everyone
// else; classify() still runs on every play (including an eventual
// Invalid one) because surrendered pieces are removed from hand either
// way.
type TurnPhase struct{}

func (TurnPhase) Name() string { return "turn" }

func (TurnPhase) OnEnter(g *Game) []Event {
	g.TurnNumber++
	g.CurrentPlays = nil
	g.RequiredPieceCount = nil

	if g.TurnNumber == 1 {
		g.CurrentPlayerIdx = g.StarterIdx
	}
	// for turn > 1, CurrentPlayerIdx was already set to the previous
	// turn's winner by TurnResultsPhase before transitioning here.

	return []Event{newEvent("phase_change", map[string]any{
		"phase":          "turn",
		"turn_number":    g.TurnNumber,
		"current_player": string(seatNameOrEmpty(g, g.CurrentPlayerIdx)),
	})}
}

func (TurnPhase) OnExit(g *Game) {}

func (TurnPhase) AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType] {
	actions := set.New[queue.ActionType](ActionLeaveRoom)
	if seatNameOrEmpty(g, g.CurrentPlayerIdx) == player {
		actions.Insert(ActionPlay)
	}
	return actions
}

func (TurnPhase) Handle(g *Game, action queue.Action) HandleResult {
	if action.Type == ActionLeaveRoom {
		return WaitingPhase{}.Handle(g, action)
	}
	if action.Type != ActionPlay {
		return rejected(ReasonWrongPhase)
	}
	if seatNameOrEmpty(g, g.CurrentPlayerIdx) != action.PlayerName {
		return rejected(ReasonNotYourTurn)
	}

	seat := g.seatByIndex(g.CurrentPlayerIdx)
	rawIdx, _ := action.Payload["indices"].([]any)
	indices := make([]int, 0, len(rawIdx))
	seen := set.New[int]()
	for _, v := range rawIdx {
		f, ok := v.(float64)
		if !ok {
			return rejected(ReasonInvalidPieces)
		}
		i := int(f)
		if i < 0 || i >= len(seat.Hand) || seen.Has(i) {
			return rejected(ReasonInvalidPieces)
		}
		seen.Insert(i)
		indices = append(indices, i)
	}
	if len(indices) < 1 || len(indices) > 8 {
		return rejected(ReasonInvalidPieces)
	}
	if g.RequiredPieceCount != nil && len(indices) != *g.RequiredPieceCount {
		return rejected(ReasonWrongPieceCount)
	}

	pieces := make([]rules.Piece, len(indices))
	for i, idx := range indices {
		pieces[i] = seat.Hand[idx]
	}
	play := rules.Play{Pieces: pieces, PlayerName: string(action.PlayerName), Order: len(g.CurrentPlays)}

	seat.Hand = removeIndices(seat.Hand, indices)
	if g.RequiredPieceCount == nil {
		count := len(indices)
		g.RequiredPieceCount = &count
	}
	g.CurrentPlays = append(g.CurrentPlays, play)

	events := []Event{newEvent("phase_change", map[string]any{
		"phase":         "turn",
		"current_plays": g.CurrentPlays,
	})}

	if len(g.CurrentPlays) < types.SeatCount {
		g.CurrentPlayerIdx = nextClockwise(g.CurrentPlayerIdx)
		return HandleResult{Accepted: true, Events: events}
	}

	return HandleResult{Accepted: true, Events: events, NextPhase: TurnResultsPhase{}}
}

func removeIndices(hand []rules.Piece, indices []int) []rules.Piece {
	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		remove[i] = true
	}
	out := make([]rules.Piece, 0, len(hand)-len(indices))
	for i, p := range hand {
		if !remove[i] {
			out = append(out, p)
		}
	}
	return out
}
