package session

import (
	"wondervoice/core"

	"github.com/google/uuid"
)

// TurnState tracks where a turn is in the pipeline.
type TurnState int

const (
	StateIdle TurnState = iota
	StateTranscribing
	StateComposing
	StateCompleting
	StatePersisting
	StateSynthesizing
	StateDone
	StateFailed
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTranscribing:
		return "transcribing"
	case StateComposing:
		return "composing"
	case StateCompleting:
		return "completing"
	case StatePersisting:
		return "persisting"
	case StateSynthesizing:
		return "synthesizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// TurnResult is what a finished turn hands to the presentation boundary:
// the transcript, the reply text, the synthesized audio when available, and
// the failure (if any) that degraded the turn.
type TurnResult struct {
	ID         uuid.UUID
	State      TurnState
	Transcript string
	ReplyText  string
	Audio      []byte
	Failure    *core.TurnError
}

// Committed reports whether the turn reached its commit point, i.e. the
// exchange is durable. A synthesis failure does not undo a commit.
func (r *TurnResult) Committed() bool {
	return r.State == StateDone
}
