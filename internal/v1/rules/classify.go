package rules

import "sort"

// Classify determines the PlayType of play, per §4.1. An empty play, or one
// whose pieces don't fit a recognized shape, classifies as Invalid — which
// is still an acceptable play (§4.6.5), just one that cannot win a turn.
func Classify(play Play) PlayType {
	n := len(play.Pieces)
	switch {
	case n == 0 || n > 8:
		return PlayTypeInvalid
	case n == 1:
		return PlayTypeSingle
	case n == 2:
		if sameKind(play.Pieces) {
			return PlayTypePair
		}
	case n == 3:
		if sameKind(play.Pieces) {
			return PlayTypeThreeOfAKind
		}
		if isStraight(play.Pieces) {
			return PlayTypeStraight
		}
	case n == 4:
		if sameKind(play.Pieces) {
			return PlayTypeFourOfAKind
		}
		if isStraight(play.Pieces) {
			return PlayTypeExtendedStraight
		}
	default: // 5..8
		if isStraight(play.Pieces) {
			return PlayTypeExtendedStraight
		}
	}
	return PlayTypeInvalid
}

func sameKind(pieces []Piece) bool {
	for i := 1; i < len(pieces); i++ {
		if pieces[i].Kind != pieces[0].Kind {
			return false
		}
	}
	return true
}

// isStraight reports whether pieces are all the same color and occupy
// consecutive, distinct ranks in kindOrder.
func isStraight(pieces []Piece) bool {
	color := pieces[0].Color
	ranks := make([]int, len(pieces))
	for i, p := range pieces {
		if p.Color != color {
			return false
		}
		r, ok := kindRank[p.Kind]
		if !ok {
			return false
		}
		ranks[i] = r
	}
	sort.Ints(ranks)
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}
	return true
}
