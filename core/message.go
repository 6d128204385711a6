package core

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one the pipeline knows how to handle.
func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleSystem, MessageRoleUser, MessageRoleAssistant:
		return true
	}
	return false
}

// Message is a single conversation entry. Messages are immutable once
// created; ordering within a history is chronological.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// SystemMessage builds the directive message that heads every history.
func SystemMessage(directive string) Message {
	return Message{Role: MessageRoleSystem, Content: directive}
}

// UserMessage builds a user message.
func UserMessage(text string) Message {
	return Message{Role: MessageRoleUser, Content: text}
}

// AssistantMessage builds an assistant message.
func AssistantMessage(text string) Message {
	return Message{Role: MessageRoleAssistant, Content: text}
}

// CloneHistory returns an independent copy of a history so callers can
// append without aliasing the source slice.
func CloneHistory(history []Message) []Message {
	out := make([]Message, len(history))
	copy(out, history)
	return out
}

// HistoryChars returns the total content length of a history, used by the
// chat client's context budget.
func HistoryChars(history []Message) int {
	total := 0
	for _, m := range history {
		total += len(m.Content)
	}
	return total
}
