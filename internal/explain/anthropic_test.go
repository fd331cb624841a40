// internal/explain/anthropic_test.go
package explain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-haiku-latest", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(server.Close)
	return server
}

func newAnthropic(t *testing.T, url string) *AnthropicService {
	return NewAnthropicService(AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 2 * time.Second,
	}, logger.NewTestLogger(t))
}

func TestAnthropicService_Explain(t *testing.T) {
	server := anthropicServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": " You qualify for PM Kisan. "}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 120, "output_tokens": 14}
	}`)

	text, err := newAnthropic(t, server.URL).Explain(context.Background(), &ExplainRequest{
		Scheme: models.Scheme{Title: "PM Kisan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You qualify for PM Kisan.", text)
}

func TestAnthropicService_Assess(t *testing.T) {
	server := anthropicServer(t, http.StatusOK, `{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "{\"eligible\": true, \"aiScore\": 25, \"explanation\": \"Haan\"}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`)

	got, err := newAnthropic(t, server.URL).Assess(context.Background(), &AssessRequest{})
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.AIScore)
	assert.Equal(t, "Haan", got.Explanation)
}

func TestAnthropicService_Error(t *testing.T) {
	server := anthropicServer(t, http.StatusBadRequest,
		`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`)

	_, err := newAnthropic(t, server.URL).Explain(context.Background(), &ExplainRequest{})
	assert.ErrorIs(t, err, ErrExplanationFailed)
}

func TestAnthropicService_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "api_error", "message": "boom"}}`)
	}))
	defer server.Close()

	_, err := newAnthropic(t, server.URL).Explain(context.Background(), &ExplainRequest{})
	assert.ErrorIs(t, err, ErrExplanationFailed)
	assert.Equal(t, int32(1), calls.Load())
}
