package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.HandlerFunc) *OpenAITranscriptionService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	svc := NewOpenAITranscriptionService(cfg, nil)
	require.NoError(t, svc.Init(context.Background()))
	return svc
}

func TestTranscribeReturnsText(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "what is Rust ownership"}`))
	})

	text, err := svc.Transcribe(context.Background(), []byte("wav-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "what is Rust ownership", text)
}

func TestTranscribeRemoteErrorMapsToEmptyTranscript(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model loading"}}`, http.StatusServiceUnavailable)
	})

	text, err := svc.Transcribe(context.Background(), []byte("wav-bytes"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTranscribeEmptyAudioIsEmptyTranscript(t *testing.T) {
	called := false
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	text, err := svc.Transcribe(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.False(t, called)
}

func TestTranscribeMissingTextFieldIsEmptyTranscript(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task": "transcribe"}`))
	})

	text, err := svc.Transcribe(context.Background(), []byte("wav-bytes"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTranscribeUninitializedIsAnError(t *testing.T) {
	svc := NewOpenAITranscriptionService(DefaultConfig(), nil)
	_, err := svc.Transcribe(context.Background(), []byte("wav-bytes"))
	assert.Error(t, err)
}

func TestTranscribeCancelledContextSurfacesError(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "never seen"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Transcribe(ctx, []byte("wav-bytes"))
	assert.ErrorIs(t, err, context.Canceled)
}
