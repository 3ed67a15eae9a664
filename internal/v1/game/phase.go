package game

import (
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"k8s.io/utils/set"
)

// Phase is one variant of the phase-as-variant family described by §4.6:
// Waiting, Preparation, RoundStart, Declaration, Turn, TurnResults,
// Scoring, GameOver. Each implementation is a zero-size value type (no
// phase carries its own state — all mutable state lives on Game), so
// switching phases is just assigning a new Phase value.
type Phase interface {
	// Name is the wire value used in phase_change.phase.
	Name() string
	// OnEnter runs once when the state machine switches into this phase
	// and returns the events it broadcasts as a result (§4.6's "entry
	// effects").
	OnEnter(g *Game) []Event
	// AllowedActions returns the action types player may currently
	// submit. Used by Game.BotSeatsAwaitingAction to find the bot seats a
	// phase is waiting on; Handle performs its own checks.
	AllowedActions(g *Game, player types.PlayerName) set.Set[queue.ActionType]
	// Handle processes one action already known to be well-formed
	// (§6.4's boundary validation has already run).
	Handle(g *Game, action queue.Action) HandleResult
	// OnExit runs once when the state machine leaves this phase.
	OnExit(g *Game)
}

// HandleResult is what a phase's Handle call decides: whether the action
// was accepted, what to broadcast, and whether to move to a new phase.
type HandleResult struct {
	Accepted  bool
	Reason    string // rejection code (§7), empty when Accepted
	Events    []Event
	NextPhase Phase // nil unless this action ends the phase
}

// Reason is the closed set of rejection/error codes a phase's Handle may
// return over the wire (§7, SUPPLEMENTED FEATURES #3). HandleResult keeps
// Reason as a plain string for wire encoding; phases should always build
// one of these named values rather than an ad hoc literal.
type Reason string

const (
	ReasonInvalidRequest         Reason = "invalid_request"
	ReasonWrongPhase             Reason = "wrong_phase"
	ReasonNotYourTurn            Reason = "not_your_turn"
	ReasonNotHost                Reason = "not_host"
	ReasonNotYourDecision        Reason = "not_your_decision"
	ReasonTotalCannotEqual8      Reason = "total_cannot_equal_8"
	ReasonNoThirdConsecutiveZero Reason = "no_third_consecutive_zero"
	ReasonWrongPieceCount        Reason = "wrong_piece_count"
	ReasonInvalidPieces          Reason = "invalid_pieces"
	ReasonRoomNotFound           Reason = "room_not_found"
	ReasonRoomFull               Reason = "room_full"
	ReasonNameTaken              Reason = "name_taken"
	ReasonRoomStarted            Reason = "room_started"
	ReasonNeedFourPlayers        Reason = "need_four_players"
	ReasonNotFound               Reason = "not_found"
)

func rejected(reason Reason) HandleResult {
	return HandleResult{Accepted: false, Reason: string(reason)}
}

func accepted(events ...Event) HandleResult {
	return HandleResult{Accepted: true, Events: events}
}

func acceptedWithTransition(next Phase, events ...Event) HandleResult {
	return HandleResult{Accepted: true, Events: events, NextPhase: next}
}

// noActions returns an empty action set, for phases where no action type
// is relevant beyond leave_room/disconnect (handled above the phase
// layer, in the supervisor).
func noActions() set.Set[queue.ActionType] {
	return set.New[queue.ActionType]()
}
