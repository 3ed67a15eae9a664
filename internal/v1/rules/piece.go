// Package rules implements the opaque, pure collaborators the rest of the
// core depends on through the RulesEngine interface (§4.1, §6): classifying
// and comparing plays, enumerating legal combinations, and scoring a round.
// Nothing in this package touches a Room, a GameState, or I/O of any kind.
package rules

// Kind identifies a piece's rank. Modeled on the seven Xiangqi piece ranks,
// with each color holding a Xiangqi set of them (see FullDeck), giving every
// color a symmetric 16-piece half-deck.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindAdvisor  Kind = "advisor"
	KindElephant Kind = "elephant"
	KindChariot  Kind = "chariot"
	KindHorse    Kind = "horse"
	KindCannon   Kind = "cannon"
	KindSoldier  Kind = "soldier"
)

// kindOrder fixes the rank used by straight-detection; index 0 is the
// lowest rank.
var kindOrder = []Kind{KindSoldier, KindCannon, KindHorse, KindChariot, KindElephant, KindAdvisor, KindGeneral}

var kindRank = func() map[Kind]int {
	m := make(map[Kind]int, len(kindOrder))
	for i, k := range kindOrder {
		m[k] = i
	}
	return m
}()

// Color identifies a piece's side. Red outranks Black at equal Kind; the
// unique Red General is the designated first-round starter piece (§4.6.2).
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// basePoint is the point value assigned to a Kind before the color bonus.
var basePoint = map[Kind]int{
	KindSoldier:  1,
	KindCannon:   3,
	KindHorse:    5,
	KindChariot:  7,
	KindElephant: 9,
	KindAdvisor:  11,
	KindGeneral:  13,
}

// Piece is an immutable card: {kind, color, point}. Point is derived from
// Kind and Color, never set independently, so two pieces of the same Kind
// and Color always compare equal in value.
type Piece struct {
	Kind  Kind
	Color Color
	Point int
}

// NewPiece constructs a Piece with its point value derived from kind/color.
// Red adds +1 over Black at the same kind, keeping every point in 1..14.
func NewPiece(kind Kind, color Color) Piece {
	p := basePoint[kind]
	if color == ColorRed {
		p++
	}
	return Piece{Kind: kind, Color: color, Point: p}
}

// IsRedGeneral reports whether this piece is the unique Red General used by
// the first-round starter rule (§4.6.2).
func (p Piece) IsRedGeneral() bool {
	return p.Kind == KindGeneral && p.Color == ColorRed
}

// FullDeck returns the fixed 32-piece deck. Each color holds a Xiangqi set:
// one General, five Soldiers, and two of every other Kind (16 per color).
func FullDeck() []Piece {
	deck := make([]Piece, 0, 32)
	for _, k := range kindOrder {
		copies := 2
		switch k {
		case KindGeneral:
			copies = 1
		case KindSoldier:
			copies = 5
		}
		for _, c := range []Color{ColorRed, ColorBlack} {
			for i := 0; i < copies; i++ {
				deck = append(deck, NewPiece(k, c))
			}
		}
	}
	return deck
}
