package factories

import (
	"context"
	"fmt"

	"wondervoice/core"
	llmservice "wondervoice/services/openai/llm"
	sttservice "wondervoice/services/openai/stt"
	ttsservice "wondervoice/services/openai/tts"
	"wondervoice/session"
	"wondervoice/store"
)

// BuildSession constructs a fully wired session from settings: the three
// OpenAI service clients, the file-backed conversation store, and the
// session itself. Service cleanups are registered on the session so Close
// tears everything down.
func BuildSession(ctx context.Context, cfg SettingsConfig, logger *core.Logger) (*session.Session, error) {
	if logger == nil {
		logger = core.GetLogger()
	}

	transcriber := sttservice.NewOpenAITranscriptionService(cfg.STT, logger)
	if err := transcriber.Init(ctx); err != nil {
		return nil, fmt.Errorf("stt service: %w", err)
	}

	chat := llmservice.NewOpenAIChatService(cfg.LLM, logger)
	if err := chat.Init(ctx); err != nil {
		transcriber.Cleanup()
		return nil, fmt.Errorf("llm service: %w", err)
	}

	synth := ttsservice.NewOpenAISynthesisService(cfg.TTS, logger)
	if err := synth.Init(ctx); err != nil {
		transcriber.Cleanup()
		chat.Cleanup()
		return nil, fmt.Errorf("tts service: %w", err)
	}

	fileStore := store.NewFileStore(cfg.StorePath, cfg.Directive, logger)

	sess, err := session.New(session.Config{
		Directive: cfg.Directive,
		Logger:    logger,
	}, transcriber, chat, synth, fileStore)
	if err != nil {
		transcriber.Cleanup()
		chat.Cleanup()
		synth.Cleanup()
		return nil, fmt.Errorf("session: %w", err)
	}

	sess.AddCloser(transcriber.Cleanup)
	sess.AddCloser(chat.Cleanup)
	sess.AddCloser(synth.Cleanup)
	return sess, nil
}
