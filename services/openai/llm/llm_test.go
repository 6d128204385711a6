package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wondervoice/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(contents ...string) []core.Message {
	out := []core.Message{core.SystemMessage("directive")}
	for i, c := range contents {
		if i%2 == 0 {
			out = append(out, core.UserMessage(c))
		} else {
			out = append(out, core.AssistantMessage(c))
		}
	}
	return out
}

func TestTruncateHistory(t *testing.T) {
	tests := []struct {
		name   string
		input  []core.Message
		budget int
		want   []string
	}{
		{
			name:   "no budget keeps everything",
			input:  history("aaaa", "bbbb", "cccc"),
			budget: 0,
			want:   []string{"directive", "aaaa", "bbbb", "cccc"},
		},
		{
			name:   "under budget keeps everything",
			input:  history("aaaa", "bbbb"),
			budget: 100,
			want:   []string{"directive", "aaaa", "bbbb"},
		},
		{
			name:   "oldest non-system dropped first",
			input:  history("aaaa", "bbbb", "cccc"),
			budget: len("directive") + 8,
			want:   []string{"directive", "bbbb", "cccc"},
		},
		{
			name:   "system head survives even a tiny budget",
			input:  history("aaaa", "bbbb"),
			budget: len("directive") + 1,
			want:   []string{"directive"},
		},
		{
			name:   "headless history truncates from the front",
			input:  []core.Message{core.UserMessage("aaaa"), core.AssistantMessage("bbbb"), core.UserMessage("cccc")},
			budget: 8,
			want:   []string{"bbbb", "cccc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateHistory(tt.input, tt.budget)
			contents := make([]string, 0, len(got))
			for _, m := range got {
				contents = append(contents, m.Content)
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func newService(t *testing.T, handler http.HandlerFunc) *OpenAIChatService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	svc := NewOpenAIChatService(cfg, nil)
	require.NoError(t, svc.Init(context.Background()))
	return svc
}

func TestCompleteReturnsAssistantMessage(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Ownership tracks who may free memory."}, "finish_reason": "stop"}]
		}`))
	})

	reply, err := svc.Complete(context.Background(), history("what is Rust ownership"))
	require.NoError(t, err)
	assert.Equal(t, core.MessageRoleAssistant, reply.Role)
	assert.Equal(t, "Ownership tracks who may free memory.", reply.Content)
}

func TestCompleteRemoteErrorYieldsSentinelAndChatFailure(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	})

	reply, err := svc.Complete(context.Background(), history("hello"))
	require.Error(t, err)
	assert.Equal(t, core.ChatFailure, core.FailureKindOf(err))
	assert.Equal(t, core.MessageRoleAssistant, reply.Role)
	assert.Empty(t, reply.Content)
}

func TestCompleteEmptyChoicesIsChatFailure(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cmpl-2", "object": "chat.completion", "choices": []}`))
	})

	_, err := svc.Complete(context.Background(), history("hello"))
	require.Error(t, err)
	assert.Equal(t, core.ChatFailure, core.FailureKindOf(err))
}

func TestCompleteUninitializedIsChatFailure(t *testing.T) {
	svc := NewOpenAIChatService(DefaultConfig(), nil)
	_, err := svc.Complete(context.Background(), history("hello"))
	require.Error(t, err)
	assert.Equal(t, core.ChatFailure, core.FailureKindOf(err))
}
