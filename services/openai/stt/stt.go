package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"wondervoice/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranscriptionService implements core.TranscriptionService using the
// OpenAI Whisper transcription endpoint.
type OpenAITranscriptionService struct {
	client *openai.Client
	config Config
	logger *core.Logger

	isInitialized bool
	mu            sync.RWMutex
}

// Config holds the configuration for the Whisper transcription service.
type Config struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// DefaultConfig returns a default configuration for Whisper transcription.
func DefaultConfig() Config {
	return Config{
		Model:    openai.Whisper1,
		Language: "en",
	}
}

// NewOpenAITranscriptionService creates a new transcription service instance.
// Use DefaultConfig() to get a config with sensible defaults and override only
// what you need.
func NewOpenAITranscriptionService(config Config, logger *core.Logger) *OpenAITranscriptionService {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAITranscriptionService{
		config: config,
		logger: logger,
	}
}

// Init initializes the transcription service.
func (s *OpenAITranscriptionService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.APIKey == "" {
		return errors.New("transcription API key is required")
	}

	cfg := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		cfg.BaseURL = s.config.BaseURL
	}
	s.client = openai.NewClientWithConfig(cfg)
	s.isInitialized = true
	return nil
}

// Cleanup performs cleanup operations.
func (s *OpenAITranscriptionService) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.isInitialized = false
	return nil
}

// Transcribe sends recorded audio to Whisper and returns the transcript.
// Any remote failure is logged and mapped to an empty transcript so the
// pipeline treats it the same as silence.
func (s *OpenAITranscriptionService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	s.mu.RLock()
	client := s.client
	initialized := s.isInitialized
	s.mu.RUnlock()

	if !initialized {
		return "", errors.New("transcription service not initialized")
	}
	if len(audio) == 0 {
		s.logger.Warn("transcription skipped: empty audio payload")
		return "", nil
	}

	req := openai.AudioRequest{
		Model:    s.config.Model,
		Language: s.config.Language,
		Reader:   bytes.NewReader(audio),
		// The SDK infers the upload format from the file name.
		FilePath: "turn.wav",
	}

	resp, err := client.CreateTranscription(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcription cancelled: %w", ctx.Err())
		}
		s.logger.Warn("transcription request failed", "error", err)
		return "", nil
	}

	return resp.Text, nil
}
