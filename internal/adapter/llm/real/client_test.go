package real

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ReturnsTextAndUsageFromResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "x",
			"object":  "chat.completion",
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "Alice is the top candidate."}}},
			"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18},
		})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, ChatModel: "test-model"})
	res, err := c.Generate(context.Background(), "system", "question")
	require.NoError(t, err)
	assert.Equal(t, "Alice is the top candidate.", res.Text)
	assert.Equal(t, 12, res.PromptTokens)
	assert.Equal(t, 6, res.CompletionTokens)
}

func TestGenerate_NoChoicesReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, ChatModel: "test-model", MaxRetries: 1})
	_, err := c.Generate(context.Background(), "", "q")
	assert.Error(t, err)
}

func TestEmbedTexts_ReturnsVectorsInRequestOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "embedding": []float32{0.2, 0.3}, "index": 1},
				{"object": "embedding", "embedding": []float32{0.1, 0.2}, "index": 0},
			},
			"usage": map[string]any{"total_tokens": 4},
		})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, EmbeddingModel: "test-embed"})
	res, err := c.EmbedTexts(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, res.Embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, res.Embeddings[0])
	assert.Equal(t, []float32{0.2, 0.3}, res.Embeddings[1])
}

func TestGenerate_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, ChatModel: "flaky-model", MaxRetries: 1})
	for i := 0; i < 3; i++ {
		_, _ = c.Generate(context.Background(), "", "q")
	}
	_, err := c.Generate(context.Background(), "", "q")
	assert.ErrorContains(t, err, "circuit open")
}
