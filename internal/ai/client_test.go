package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomai/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithEndpoint("test-key", "gpt-3.5-turbo", srv.URL, logger.New("error"))
}

func TestCompleteSuccess(t *testing.T) {
	var got CompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "New title"}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	})

	text, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{UserMessage("user", "Rewrite this title")},
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", text)

	// Empty model falls back to the client default.
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Rewrite this title", got.Messages[0].Content[0].Text)
}

func TestCompleteExplicitModel(t *testing.T) {
	var got CompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestCompleteAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	text, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCompleteMissingKey(t *testing.T) {
	client := NewClient("", "gpt-3.5-turbo", logger.New("error"))
	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
}
