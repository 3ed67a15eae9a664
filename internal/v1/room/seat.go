package room

import (
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// Seat is one of the four stable slots in a Room (§3). A seat keeps its
// identity across disconnects: it never migrates to a different index, and
// is_bot flips on disconnect/reconnect without losing the player's name,
// score, or hand.
type Seat struct {
	Name           types.PlayerName
	IsBot          bool
	OriginalIsBot  bool
	IsConnected    bool
	DisconnectTime time.Time

	Hand                []rules.Piece
	Declared            int
	CapturedPiles       int
	Score               int
	ZeroDeclaresInARow  int
}

// Snapshot is the immutable, wire-safe view of a Seat used in phase_change
// payloads (§6.3): {name, is_bot, is_connected, score, hand_size,
// captured_piles, declared}.
type Snapshot struct {
	Name          string `json:"name"`
	IsBot         bool   `json:"is_bot"`
	IsConnected   bool   `json:"is_connected"`
	Score         int    `json:"score"`
	HandSize      int    `json:"hand_size"`
	CapturedPiles int    `json:"captured_piles"`
	Declared      int    `json:"declared"`
}

// Snapshot builds the wire view of this seat. Returns the zero Snapshot
// (empty name) for a nil seat, since callers iterate fixed-size [4]*Seat
// arrays that may contain empty slots.
func (s *Seat) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Name:          string(s.Name),
		IsBot:         s.IsBot,
		IsConnected:   s.IsConnected,
		Score:         s.Score,
		HandSize:      len(s.Hand),
		CapturedPiles: s.CapturedPiles,
		Declared:      s.Declared,
	}
}
