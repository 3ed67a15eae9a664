package bot

import (
	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// DefaultStrategy is a straightforward, rules-driven bot: it never makes
// an illegal move, but it doesn't look ahead. accept_redeal/declare/play
// decisions all fall back on the same engine the core uses to validate
// them, so a bot's choice is always something the state machine would
// accept.
type DefaultStrategy struct {
	Engine rules.Engine
}

var _ Strategy = DefaultStrategy{}

func (s DefaultStrategy) ChooseAction(phase string, handle RoomHandle, seat types.PlayerName) (queue.ActionType, map[string]any) {
	switch phase {
	case "preparation":
		// Decline every redeal offer: without look-ahead, a bot cannot
		// judge whether trading the current hand for an unknown one is
		// worthwhile, and repeatedly accepting would just burn rounds.
		return game.ActionRedealDecision, map[string]any{"accept": false}

	case "declaration":
		hand := handle.Hand(seat)
		return game.ActionDeclare, map[string]any{"value": float64(s.estimateDeclaration(hand))}

	case "turn":
		hand := handle.Hand(seat)
		required := handle.Snapshot().RequiredPieceCount
		return game.ActionPlay, map[string]any{"indices": s.choosePlayIndices(hand, required)}

	case "turn_results":
		return game.ActionAnimationComplete, map[string]any{}

	default:
		return "", nil
	}
}

// estimateDeclaration counts pieces worth more than a soldier as rough
// capture potential, capped at the legal 0..8 range.
func (s DefaultStrategy) estimateDeclaration(hand []rules.Piece) int {
	count := 0
	for _, p := range hand {
		if p.Point > 3 {
			count++
		}
	}
	if count > 8 {
		count = 8
	}
	return count
}

// choosePlayIndices leads with a single piece when nothing has latched the
// turn's required count yet (requiredCount == 0): without an opponent model
// a bot gains nothing from guessing at multi-piece combos, and a single is
// always legal to lead with. When required is already set by an earlier
// play this turn, the bot must match it exactly (§4.6.5) or TurnPhase
// rejects the play with wrong_piece_count, so it asks the engine for a
// classify-valid combo of that size and falls back to any requiredCount
// indices if the hand has none.
func (s DefaultStrategy) choosePlayIndices(hand []rules.Piece, requiredCount int) []any {
	if len(hand) == 0 {
		return []any{}
	}
	if requiredCount <= 0 {
		return []any{float64(0)}
	}
	if requiredCount > len(hand) {
		requiredCount = len(hand)
	}
	if combos := s.Engine.ValidCombos(hand, requiredCount); len(combos) > 0 {
		if indices, ok := indicesForPlay(hand, combos[0]); ok {
			return indices
		}
	}
	indices := make([]any, requiredCount)
	for i := 0; i < requiredCount; i++ {
		indices[i] = float64(i)
	}
	return indices
}

// indicesForPlay maps a Play's pieces back onto hand indices, greedily
// claiming the first unused matching index for each piece in order.
func indicesForPlay(hand []rules.Piece, play rules.Play) ([]any, bool) {
	used := make([]bool, len(hand))
	out := make([]any, 0, len(play.Pieces))
	for _, want := range play.Pieces {
		found := -1
		for i, p := range hand {
			if !used[i] && p == want {
				found = i
				break
			}
		}
		if found == -1 {
			return nil, false
		}
		used[found] = true
		out = append(out, float64(found))
	}
	return out, true
}
