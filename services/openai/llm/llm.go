package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wondervoice/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAIChatService implements core.ChatService using OpenAI chat completions.
type OpenAIChatService struct {
	client *openai.Client
	config Config
	logger *core.Logger

	isInitialized bool
	mu            sync.RWMutex
}

// Config holds the configuration for the chat completion service.
// Generation parameters are fixed per session, not per call.
type Config struct {
	APIKey      string  `json:"api_key"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	// ContextCharBudget bounds the total content length of the history sent
	// upstream. When exceeded, the oldest non-system messages are dropped
	// first. Zero means no bound.
	ContextCharBudget int `json:"context_char_budget"`
}

// DefaultConfig returns a default chat configuration.
func DefaultConfig() Config {
	return Config{
		Model:             openai.GPT4oMini,
		MaxTokens:         1024,
		Temperature:       1,
		TopP:              1,
		ContextCharBudget: 24576,
	}
}

// NewOpenAIChatService creates a new chat service instance.
func NewOpenAIChatService(config Config, logger *core.Logger) *OpenAIChatService {
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1024
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAIChatService{
		config: config,
		logger: logger,
	}
}

// Init initializes the chat service.
func (s *OpenAIChatService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.APIKey == "" {
		return errors.New("chat API key is required")
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
func (s *OpenAIChatService) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.isInitialized = false
	return nil
}

// Complete sends the conversation history upstream and returns the next
// assistant message. On any remote failure it returns a sentinel empty
// assistant message and a core.ChatFailure error; the caller must not
// persist the turn.
func (s *OpenAIChatService) Complete(ctx context.Context, history []core.Message) (core.Message, error) {
	s.mu.RLock()
	client := s.client
	initialized := s.isInitialized
	s.mu.RUnlock()

	sentinel := core.AssistantMessage("")
	if !initialized {
		return sentinel, core.NewTurnError(core.ChatFailure, errors.New("chat service not initialized"))
	}

	bounded := truncateHistory(history, s.config.ContextCharBudget)
	if dropped := len(history) - len(bounded); dropped > 0 {
		s.logger.Debug("history truncated to fit context budget", "dropped", dropped)
	}

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    convertMessages(bounded),
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		TopP:        s.config.TopP,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return sentinel, core.NewTurnError(core.ChatFailure, fmt.Errorf("create completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return sentinel, core.NewTurnError(core.ChatFailure, errors.New("completion response had no choices"))
	}

	return core.AssistantMessage(resp.Choices[0].Message.Content), nil
}

// truncateHistory drops the oldest non-system messages until total content
// length fits the budget. The system head is always kept.
func truncateHistory(history []core.Message, budget int) []core.Message {
	if budget <= 0 || core.HistoryChars(history) <= budget {
		return history
	}

	head := []core.Message{}
	tail := history
	if len(history) > 0 && history[0].Role == core.MessageRoleSystem {
		head = history[:1]
		tail = history[1:]
	}

	used := core.HistoryChars(head)
	// Walk the tail newest-first, keeping as much recent context as fits.
	keepFrom := len(tail)
	for i := len(tail) - 1; i >= 0; i-- {
		if used+len(tail[i].Content) > budget {
			break
		}
		used += len(tail[i].Content)
		keepFrom = i
	}

	out := make([]core.Message, 0, len(head)+len(tail)-keepFrom)
	out = append(out, head...)
	out = append(out, tail[keepFrom:]...)
	return out
}

// convertMessages converts pipeline messages to OpenAI messages.
func convertMessages(messages []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

// convertRole converts a pipeline role to an OpenAI role.
func convertRole(role core.MessageRole) string {
	switch role {
	case core.MessageRoleSystem:
		return openai.ChatMessageRoleSystem
	case core.MessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
