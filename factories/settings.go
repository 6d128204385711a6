package factories

import (
	"fmt"

	llmservice "wondervoice/services/openai/llm"
	sttservice "wondervoice/services/openai/stt"
	ttsservice "wondervoice/services/openai/tts"
	gateway "wondervoice/transports/websocket"

	"github.com/bytedance/sonic"
)

// DefaultDirective is the session system prompt used when settings do not
// override it.
const DefaultDirective = "You are a tech nerd, concise and to the point. Your name is 'WonderAI', created by Boi loves code."

// SettingsConfig is the top-level config loaded from settings.json (or the
// SETTINGS_JSON_B64 environment override). It bundles the per-service
// configs with session-level settings.
type SettingsConfig struct {
	// Directive is the system prompt fixed at session start.
	Directive string `json:"directive"`
	// StorePath is the conversation history file.
	StorePath string `json:"store_path"`
	// STT configures the transcription service.
	STT sttservice.Config `json:"stt"`
	// LLM configures the chat completion service.
	LLM llmservice.Config `json:"llm"`
	// TTS configures the speech synthesis service.
	TTS ttsservice.Config `json:"tts"`
	// Gateway configures the session socket's audio output.
	Gateway gateway.Config `json:"gateway"`
}

// APIKeys carries secrets that never live in settings files.
type APIKeys struct {
	OpenAI string
}

// DefaultSettingsConfig returns a SettingsConfig pre-filled with service
// defaults.
func DefaultSettingsConfig() SettingsConfig {
	return SettingsConfig{
		Directive: DefaultDirective,
		StorePath: "conversation_history.json",
		STT:       sttservice.DefaultConfig(),
		LLM:       llmservice.DefaultConfig(),
		TTS:       ttsservice.DefaultConfig(),
		Gateway:   gateway.DefaultConfig(),
	}
}

// SettingsConfigFromJSON parses a JSON blob into a SettingsConfig, filling
// anything not set with defaults.
func SettingsConfigFromJSON(data []byte) (SettingsConfig, error) {
	cfg := DefaultSettingsConfig()
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return SettingsConfig{}, fmt.Errorf("settings: %w", err)
	}
	if cfg.Directive == "" {
		cfg.Directive = DefaultDirective
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "conversation_history.json"
	}
	return cfg, nil
}

// ApplyKeys copies secrets into the per-service configs that need them.
func (c *SettingsConfig) ApplyKeys(keys APIKeys) {
	if keys.OpenAI != "" {
		if c.STT.APIKey == "" {
			c.STT.APIKey = keys.OpenAI
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = keys.OpenAI
		}
		if c.TTS.APIKey == "" {
			c.TTS.APIKey = keys.OpenAI
		}
	}
}
