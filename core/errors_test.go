package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTurnError(ChatFailure, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "chat_failure")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFailureKindOf(t *testing.T) {
	err := NewTurnError(SynthesisFailure, errors.New("tts down"))
	assert.Equal(t, SynthesisFailure, FailureKindOf(err))

	wrapped := fmt.Errorf("turn aborted: %w", err)
	assert.Equal(t, SynthesisFailure, FailureKindOf(wrapped))

	assert.Equal(t, FailureKind(""), FailureKindOf(errors.New("plain")))
	assert.Equal(t, FailureKind(""), FailureKindOf(nil))
}

func TestTurnErrorWithoutCause(t *testing.T) {
	err := &TurnError{Kind: StoreCorruption}
	assert.Equal(t, string(StoreCorruption), err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
