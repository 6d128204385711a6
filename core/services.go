package core

import "context"

// TranscriptionService converts recorded audio into text.
//
// Transcribe is best-effort: a transport failure or unintelligible audio
// yields an empty transcript and a nil error. An empty transcript is the
// "no input" signal, not a fault.
type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// ChatService produces the next assistant message for a conversation.
//
// Implementations bound the history they send upstream and truncate the
// oldest non-system messages first when the bound is exceeded. On remote
// failure they return a sentinel empty assistant message together with a
// *TurnError of kind ChatFailure.
type ChatService interface {
	Complete(ctx context.Context, history []Message) (Message, error)
}

// SynthesisService renders reply text as audio. Empty or whitespace-only
// text is a no-op returning a nil payload. On remote failure it returns a
// nil payload and a *TurnError of kind SynthesisFailure; the caller still
// delivers the text reply.
type SynthesisService interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ConversationStore persists conversation history across sessions.
//
// Load never fails the caller: a missing or unreadable store yields the
// canonical system-only history. Save is atomic; a crash mid-write leaves
// the previous snapshot intact.
type ConversationStore interface {
	Load() ([]Message, error)
	Save(history []Message) error
}
