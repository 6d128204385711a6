package core

import (
	"errors"
	"fmt"
)

// FailureKind classifies where in the turn pipeline a failure happened.
type FailureKind string

const (
	// TranscriptionFailure: the ASR call failed. Recovered locally as an
	// empty transcript, so callers normally never see this kind.
	TranscriptionFailure FailureKind = "transcription_failure"
	// ChatFailure: the completion call failed. The turn is rolled back and
	// nothing is persisted.
	ChatFailure FailureKind = "chat_failure"
	// SynthesisFailure: the TTS call failed. The turn still commits; only
	// the audio payload is missing.
	SynthesisFailure FailureKind = "synthesis_failure"
	// StoreCorruption: persisted history was unreadable and was reset to
	// the system-only default.
	StoreCorruption FailureKind = "store_corruption"
)

// TurnError wraps a pipeline failure with its kind so callers can decide
// how much of the turn survived.
type TurnError struct {
	Kind FailureKind
	Err  error
}

func (e *TurnError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// NewTurnError builds a TurnError of the given kind.
func NewTurnError(kind FailureKind, err error) *TurnError {
	return &TurnError{Kind: kind, Err: err}
}

// FailureKindOf extracts the failure kind from an error, or "" when the
// error is not a TurnError.
func FailureKindOf(err error) FailureKind {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
