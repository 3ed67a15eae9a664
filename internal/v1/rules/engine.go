package rules

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// InitialHandSize is the constant number of pieces dealt to each seat at
// Preparation entry (§4.6.2): the full 32-piece deck divided across the
// fixed 4 seats.
const InitialHandSize = 8

// Engine is the pure, stateless rules collaborator the core depends on
// (§4.1, §6). Every method is safe for concurrent use; Deal is the only
// method with externally visible randomness, and it carries no state
// between calls.
type Engine interface {
	Classify(play Play) PlayType
	Compare(a, b Play) CompareResult
	ValidCombos(hand []Piece, requiredCount int) []Play
	IsWeak(hand []Piece) bool
	Score(declared, captured, redealMultiplier int) int
	// Deal shuffles a fresh deck and splits it into SeatCount hands of
	// InitialHandSize pieces each.
	Deal(seatCount int) [][]Piece
}

// DefaultEngine is the concrete Engine used in production: the standard
// 32-piece Xiangqi-derived deck and the house-rule scoring in score.go.
type DefaultEngine struct{}

var _ Engine = DefaultEngine{}

func (DefaultEngine) Classify(play Play) PlayType                       { return Classify(play) }
func (DefaultEngine) Compare(a, b Play) CompareResult                   { return Compare(a, b) }
func (DefaultEngine) ValidCombos(hand []Piece, n int) []Play            { return ValidCombos(hand, n) }
func (DefaultEngine) IsWeak(hand []Piece) bool                          { return IsWeak(hand) }
func (DefaultEngine) Score(declared, captured, redealMultiplier int) int {
	return Score(declared, captured, redealMultiplier)
}

func (DefaultEngine) Deal(seatCount int) [][]Piece {
	deck := FullDeck()
	shuffle(deck)

	hands := make([][]Piece, seatCount)
	for i := range hands {
		hands[i] = make([]Piece, 0, InitialHandSize)
	}
	for i, piece := range deck {
		seat := i % seatCount
		if len(hands[seat]) < InitialHandSize {
			hands[seat] = append(hands[seat], piece)
		}
	}
	return hands
}

// shuffle performs an in-place Fisher-Yates shuffle seeded from a
// cryptographically random 64-bit value, so concurrent Deal calls from
// different goroutines never share or mutate any package-level state.
func shuffle(deck []Piece) {
	var seed [8]byte
	_, _ = rand.Read(seed[:])
	r := mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
	r.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}
