package rules

// PlayType classifies a Play (§4.1). Invalid is reserved: it is still an
// acceptable play (§4.6.5) but can never win a turn.
type PlayType string

const (
	PlayTypeInvalid          PlayType = "invalid"
	PlayTypeSingle           PlayType = "single"
	PlayTypePair             PlayType = "pair"
	PlayTypeThreeOfAKind     PlayType = "three_of_a_kind"
	PlayTypeFourOfAKind      PlayType = "four_of_a_kind"
	PlayTypeStraight         PlayType = "straight"
	PlayTypeExtendedStraight PlayType = "extended_straight"
)

// Play is an ordered sequence of 1..8 pieces drawn from one seat's hand,
// together with the player that played it and its order within the turn.
type Play struct {
	Pieces     []Piece
	PlayerName string
	// Order is the play's position within the current turn (0-based),
	// used for the earliest-play-wins tie-break in compare and TurnResults.
	Order int
}

// CompareResult is the outcome of comparing two same-typed plays (§4.1).
type CompareResult int

const (
	ATie CompareResult = iota
	AWins
	BWins
)
