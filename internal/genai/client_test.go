package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", DefaultModel, server.URL, 5*time.Second, zap.NewNop())
}

func TestGenerateContent(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "The answer is 2 dice."}}}},
			},
		})
	})

	text, err := client.GenerateContent(context.Background(), "How many dice?")

	require.NoError(t, err)
	assert.Equal(t, "The answer is 2 dice.", text)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "How many dice?", captured.Contents[0].Parts[0].Text)
}

func TestGenerateContentQuotaErrorSurfacesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    429,
				"message": "Quota exceeded for quota metric",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	})

	_, err := client.GenerateContent(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quota exceeded")
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateContent(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrEmptyCandidates)
}

func TestGenerateContentJoinsParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "Part one. "},
					{"text": "Part two."},
				}}},
			},
		})
	})

	text, err := client.GenerateContent(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", text)
}
