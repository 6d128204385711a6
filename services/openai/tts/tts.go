package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"wondervoice/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAISynthesisService implements core.SynthesisService using the OpenAI
// speech endpoint.
type OpenAISynthesisService struct {
	client *openai.Client
	config Config
	logger *core.Logger

	isInitialized bool
	mu            sync.RWMutex
}

// Config holds the configuration for the speech synthesis service.
type Config struct {
	APIKey  string  `json:"api_key"`
	BaseURL string  `json:"base_url"`
	Model   string  `json:"model"`
	Voice   string  `json:"voice"`
	Format  string  `json:"format"` // "mp3" or "pcm" (24 kHz 16-bit mono)
	Speed   float64 `json:"speed"`
}

// DefaultConfig returns a default synthesis configuration.
func DefaultConfig() Config {
	return Config{
		Model:  string(openai.TTSModel1),
		Voice:  string(openai.VoiceAlloy),
		Format: "mp3",
		Speed:  1.0,
	}
}

// NewOpenAISynthesisService creates a new synthesis service instance.
func NewOpenAISynthesisService(config Config, logger *core.Logger) *OpenAISynthesisService {
	if config.Model == "" {
		config.Model = string(openai.TTSModel1)
	}
	if config.Voice == "" {
		config.Voice = string(openai.VoiceAlloy)
	}
	if config.Format == "" {
		config.Format = "mp3"
	}
	if config.Speed == 0 {
		config.Speed = 1.0
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAISynthesisService{
		config: config,
		logger: logger,
	}
}

// Init initializes the synthesis service.
func (s *OpenAISynthesisService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.APIKey == "" {
		return errors.New("synthesis API key is required")
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
func (s *OpenAISynthesisService) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.isInitialized = false
	return nil
}

// Encoding reports the encoding of payloads returned by Synthesize.
func (s *OpenAISynthesisService) Encoding() core.AudioEncodingFormat {
	if s.config.Format == "pcm" {
		return core.PCM
	}
	return core.MP3
}

// Synthesize renders reply text as audio. Whitespace-only input is a no-op.
// Remote failure yields a nil payload and a core.SynthesisFailure error;
// the caller still delivers the text reply.
func (s *OpenAISynthesisService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.RLock()
	client := s.client
	initialized := s.isInitialized
	s.mu.RUnlock()

	if !initialized {
		return nil, core.NewTurnError(core.SynthesisFailure, errors.New("synthesis service not initialized"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.config.Voice),
		ResponseFormat: openai.SpeechResponseFormat(s.config.Format),
		Speed:          s.config.Speed,
	}

	resp, err := client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, core.NewTurnError(core.SynthesisFailure, fmt.Errorf("create speech: %w", err))
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, core.NewTurnError(core.SynthesisFailure, fmt.Errorf("read speech payload: %w", err))
	}
	return audio, nil
}
