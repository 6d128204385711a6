package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"wondervoice/core"

	"github.com/google/uuid"
)

// Session owns everything one conversation needs: the three remote service
// clients, the conversation store, the in-memory history, and the playback
// queue. Create it at session start, pass it around explicitly, and Close
// it at teardown. There is no package-level state.
type Session struct {
	id        uuid.UUID
	directive string
	logger    *core.Logger

	transcriber core.TranscriptionService
	chat        core.ChatService
	synth       core.SynthesisService
	store       core.ConversationStore
	queue       *PlaybackQueue

	// mu serializes turns. The store save is the commit point and must be
	// single-writer; holding mu for the whole turn also makes duplicate
	// concurrent submissions resolve through the completed-turn cache.
	mu        sync.Mutex
	history   []core.Message
	completed map[uuid.UUID]*TurnResult

	closers []func() error
}

// Config holds session construction parameters.
type Config struct {
	Directive string
	Logger    *core.Logger
}

// New creates a session around the given collaborators. The in-memory
// history is seeded from the store so a restarted process resumes the
// prior conversation.
func New(cfg Config, transcriber core.TranscriptionService, chat core.ChatService, synth core.SynthesisService, store core.ConversationStore) (*Session, error) {
	if transcriber == nil || chat == nil || synth == nil || store == nil {
		return nil, errors.New("session requires transcription, chat, synthesis and store collaborators")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.GetLogger()
	}

	id := uuid.New()
	s := &Session{
		id:          id,
		directive:   cfg.Directive,
		logger:      logger.With(map[string]interface{}{"session": id.String()}),
		transcriber: transcriber,
		chat:        chat,
		synth:       synth,
		store:       store,
		queue:       NewPlaybackQueue(),
		completed:   make(map[uuid.UUID]*TurnResult),
	}

	history, err := store.Load()
	if err != nil {
		// Load is self-healing by contract; a non-nil error is a store
		// implementation bug, not a recoverable condition.
		return nil, err
	}
	s.history = history
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Playback returns the session's playback queue.
func (s *Session) Playback() *PlaybackQueue { return s.queue }

// History returns a copy of the in-memory conversation history.
func (s *Session) History() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CloneHistory(s.history)
}

// AddCloser registers a teardown hook invoked by Close.
func (s *Session) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close tears the session down: pending playback is discarded and any
// registered service cleanups run.
func (s *Session) Close() error {
	s.queue.Drain()
	var firstErr error
	for _, fn := range s.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Reset clears the conversation back to the system directive, both in
// memory and on disk, and discards pending playback.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := []core.Message{core.SystemMessage(s.directive)}
	if err := s.store.Save(fresh); err != nil {
		return err
	}
	s.history = fresh
	s.completed = make(map[uuid.UUID]*TurnResult)
	s.queue.Drain()
	s.logger.Info("conversation reset")
	return nil
}

// RunTurn drives one full turn: audio in, transcript, completion, commit,
// synthesized audio out. Steps run strictly in order, each blocking on the
// previous remote round trip.
//
// RunTurn is idempotent per turn ID: re-invoking it with an ID that already
// ran returns the recorded result without repeating any side-effecting step.
// That keeps presentation layers that re-enter their render loop from
// double-billing remote calls or enqueueing the same audio twice.
//
// Pipeline failures come back inside the TurnResult, not as the error
// return; the error return is reserved for a turn abandoned by ctx before
// any remote call was made.
func (s *Session) RunTurn(ctx context.Context, turnID uuid.UUID, audio []byte) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.completed[turnID]; ok {
		s.logger.Debug("turn replayed from cache", "turn", turnID.String())
		return prior, nil
	}

	logger := s.logger.With(map[string]interface{}{"turn": turnID.String()})

	// Transcribing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("state transition", "state", StateTranscribing.String())
	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		result := s.finish(turnID, &TurnResult{
			ID:      turnID,
			State:   StateFailed,
			Failure: core.NewTurnError(core.TranscriptionFailure, err),
		})
		return result, nil
	}
	if strings.TrimSpace(transcript) == "" {
		// Silence is not a turn: nothing is appended, the chat service is
		// never called, and the pipeline returns to idle.
		logger.Debug("empty transcript, returning to idle")
		result := s.finish(turnID, &TurnResult{ID: turnID, State: StateIdle})
		return result, nil
	}

	// Composing: re-seed from the store so the turn builds on the last
	// committed snapshot.
	logger.Debug("state transition", "state", StateComposing.String())
	committedHistory, err := s.store.Load()
	if err != nil {
		committedHistory = core.CloneHistory(s.history)
	}
	pending := append(core.CloneHistory(committedHistory), core.UserMessage(transcript))

	// Completing.
	if err := ctx.Err(); err != nil {
		// Abandoned before the model call: nothing happened, allow retry
		// under the same turn ID.
		return nil, err
	}
	logger.Debug("state transition", "state", StateCompleting.String())
	reply, err := s.chat.Complete(ctx, pending)
	if err != nil {
		// The pending user message is discarded; the store still holds the
		// pre-turn snapshot.
		logger.Warn("completion failed, turn rolled back", "error", err)
		result := s.finish(turnID, &TurnResult{
			ID:         turnID,
			State:      StateFailed,
			Transcript: transcript,
			Failure:    asTurnError(core.ChatFailure, err),
		})
		return result, nil
	}

	// Persisting: the commit point. From here the turn runs to completion
	// regardless of ctx.
	logger.Debug("state transition", "state", StatePersisting.String())
	pending = append(pending, reply)
	if err := s.store.Save(pending); err != nil {
		logger.Error("history commit failed, turn rolled back", "error", err)
		result := s.finish(turnID, &TurnResult{
			ID:         turnID,
			State:      StateFailed,
			Transcript: transcript,
			Failure:    asTurnError(core.StoreCorruption, err),
		})
		return result, nil
	}
	s.history = pending

	// Synthesizing: failure here never rolls back the committed exchange,
	// it only withholds audio for this turn.
	logger.Debug("state transition", "state", StateSynthesizing.String())
	result := &TurnResult{
		ID:         turnID,
		State:      StateDone,
		Transcript: transcript,
		ReplyText:  reply.Content,
	}
	audioOut, synthErr := s.synth.Synthesize(ctx, reply.Content)
	if synthErr != nil {
		logger.Warn("synthesis failed, delivering text only", "error", synthErr)
		result.Failure = asTurnError(core.SynthesisFailure, synthErr)
	} else if len(audioOut) > 0 {
		result.Audio = audioOut
		s.queue.Enqueue(PlaybackItem{ID: uuid.New(), Audio: audioOut})
	}

	logger.Info("turn completed",
		"transcript_chars", len(transcript),
		"reply_chars", len(reply.Content),
		"audio_bytes", len(result.Audio))
	return s.finish(turnID, result), nil
}

// finish records a turn outcome for idempotent replay and returns it.
func (s *Session) finish(turnID uuid.UUID, result *TurnResult) *TurnResult {
	s.completed[turnID] = result
	return result
}

// asTurnError keeps an existing TurnError as-is and wraps anything else
// with the given kind.
func asTurnError(kind core.FailureKind, err error) *core.TurnError {
	var te *core.TurnError
	if errors.As(err, &te) {
		return te
	}
	return core.NewTurnError(kind, err)
}
