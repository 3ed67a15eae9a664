package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		play  Play
		wants PlayType
	}{
		{"empty", Play{}, PlayTypeInvalid},
		{"single", Play{Pieces: []Piece{NewPiece(KindSoldier, ColorRed)}}, PlayTypeSingle},
		{"pair", Play{Pieces: []Piece{NewPiece(KindHorse, ColorRed), NewPiece(KindHorse, ColorBlack)}}, PlayTypePair},
		{"not a pair", Play{Pieces: []Piece{NewPiece(KindHorse, ColorRed), NewPiece(KindCannon, ColorRed)}}, PlayTypeInvalid},
		{"three of a kind", Play{Pieces: []Piece{
			NewPiece(KindSoldier, ColorRed), NewPiece(KindSoldier, ColorBlack), NewPiece(KindSoldier, ColorRed),
		}}, PlayTypeThreeOfAKind},
		{"straight of three", Play{Pieces: []Piece{
			NewPiece(KindSoldier, ColorRed), NewPiece(KindCannon, ColorRed), NewPiece(KindHorse, ColorRed),
		}}, PlayTypeStraight},
		{"straight wrong color mix", Play{Pieces: []Piece{
			NewPiece(KindSoldier, ColorRed), NewPiece(KindCannon, ColorBlack), NewPiece(KindHorse, ColorRed),
		}}, PlayTypeInvalid},
		{"four of a kind", Play{Pieces: []Piece{
			NewPiece(KindGeneral, ColorRed), NewPiece(KindGeneral, ColorRed),
			NewPiece(KindGeneral, ColorBlack), NewPiece(KindGeneral, ColorBlack),
		}}, PlayTypeFourOfAKind},
		{"extended straight of five", Play{Pieces: []Piece{
			NewPiece(KindSoldier, ColorBlack), NewPiece(KindCannon, ColorBlack), NewPiece(KindHorse, ColorBlack),
			NewPiece(KindChariot, ColorBlack), NewPiece(KindElephant, ColorBlack),
		}}, PlayTypeExtendedStraight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, Classify(tt.play))
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	play := Play{Pieces: []Piece{NewPiece(KindHorse, ColorRed), NewPiece(KindHorse, ColorBlack)}}
	first := Classify(play)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Classify(play))
	}
}

func TestCompare_SameType(t *testing.T) {
	low := Play{Pieces: []Piece{NewPiece(KindSoldier, ColorRed)}, Order: 0}
	high := Play{Pieces: []Piece{NewPiece(KindGeneral, ColorRed)}, Order: 1}

	assert.Equal(t, BWins, Compare(low, high))
	assert.Equal(t, AWins, Compare(high, low))
}

func TestCompare_DifferentType_EarliestWins(t *testing.T) {
	single := Play{Pieces: []Piece{NewPiece(KindGeneral, ColorRed)}, Order: 0}
	pair := Play{Pieces: []Piece{NewPiece(KindSoldier, ColorRed), NewPiece(KindSoldier, ColorBlack)}, Order: 1}

	assert.Equal(t, AWins, Compare(single, pair))
	assert.Equal(t, BWins, Compare(pair, single))
}

func TestCompare_Tie(t *testing.T) {
	a := Play{Pieces: []Piece{NewPiece(KindSoldier, ColorRed)}, Order: 0}
	b := Play{Pieces: []Piece{NewPiece(KindSoldier, ColorRed)}, Order: 0}
	assert.Equal(t, ATie, Compare(a, b))
}

func TestValidCombos_Pairs(t *testing.T) {
	hand := []Piece{
		NewPiece(KindHorse, ColorRed),
		NewPiece(KindHorse, ColorBlack),
		NewPiece(KindCannon, ColorRed),
	}
	combos := ValidCombos(hand, 2)
	require.Len(t, combos, 1)
	assert.Equal(t, PlayTypePair, Classify(combos[0]))
}

func TestValidCombos_RejectsOutOfRangeCount(t *testing.T) {
	hand := FullDeck()[:8]
	assert.Nil(t, ValidCombos(hand, 0))
	assert.Nil(t, ValidCombos(hand, 9))
	assert.Nil(t, ValidCombos(hand, len(hand)+1))
}

func TestIsWeak(t *testing.T) {
	weakHand := []Piece{NewPiece(KindSoldier, ColorRed), NewPiece(KindCannon, ColorBlack)}
	assert.True(t, IsWeak(weakHand))

	strongHand := []Piece{NewPiece(KindSoldier, ColorRed), NewPiece(KindGeneral, ColorRed)}
	assert.False(t, IsWeak(strongHand))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 3, Score(0, 0, 1))
	assert.Equal(t, 6, Score(0, 0, 2))
	assert.Equal(t, 8, Score(3, 3, 1))
	assert.Equal(t, -2, Score(3, 1, 1))
	assert.Equal(t, -4, Score(1, 3, 2))
}

func TestDefaultEngine_Deal(t *testing.T) {
	engine := DefaultEngine{}
	hands := engine.Deal(4)
	require.Len(t, hands, 4)

	seen := map[Piece]int{}
	for _, hand := range hands {
		assert.Len(t, hand, InitialHandSize)
		for _, p := range hand {
			seen[p]++
		}
	}
	assert.Len(t, seen, 14, "32-piece deck has 14 distinct (kind,color) values")
	for p, count := range seen {
		want := 2
		switch p.Kind {
		case KindGeneral:
			want = 1
		case KindSoldier:
			want = 5
		}
		assert.Equal(t, want, count, "copies of %v", p)
	}
}

func TestDefaultEngine_Deal_Shuffles(t *testing.T) {
	engine := DefaultEngine{}
	a := engine.Deal(4)
	b := engine.Deal(4)

	identical := true
	for seat := range a {
		if len(a[seat]) != len(b[seat]) {
			identical = false
			break
		}
		for i := range a[seat] {
			if a[seat][i] != b[seat][i] {
				identical = false
				break
			}
		}
	}
	assert.False(t, identical, "two deals should not produce identical hands")
}

func TestIsRedGeneral(t *testing.T) {
	assert.True(t, NewPiece(KindGeneral, ColorRed).IsRedGeneral())
	assert.False(t, NewPiece(KindGeneral, ColorBlack).IsRedGeneral())
	assert.False(t, NewPiece(KindSoldier, ColorRed).IsRedGeneral())
}
