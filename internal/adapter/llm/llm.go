// Package llm provides the shared retry/circuit-breaker/cache building
// blocks (Package-level below) plus New, the DEFAULT_MODE-keyed factory that
// selects between the real OpenRouter-backed client and the deterministic
// local stub (§6).
package llm

import (
	"github.com/cvqa/retrieval-engine/internal/adapter/llm/real"
	"github.com/cvqa/retrieval-engine/internal/adapter/llm/stub"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Clients bundles the chat LLM and the (optionally cached) embedder built
// for the configured mode; both are backed by the same concrete client in
// either mode, since domain.LLM and domain.Embedder are both satisfied by a
// single provider connection.
type Clients struct {
	Chat      domain.LLM
	Embed     domain.Embedder
	RawEmbed  domain.Embedder // uncached, for callers that need to bypass the cache (e.g. bulk ingestion)
}

// New builds the chat/embedding clients for cfg.DefaultMode. Cloud mode talks
// to OpenRouter (or OpenAI, when only OPENAI_API_KEY is set) via real.Client;
// local mode uses the deterministic stub so the pipeline runs without
// network access. The embedder is wrapped in an in-memory FIFO-eviction cache sized by
// cfg.EmbedCacheSize in both modes.
func New(cfg config.Config, model string) Clients {
	if !cfg.IsCloudMode() || (cfg.OpenRouterAPIKey == "" && cfg.OpenAIAPIKey == "") {
		c := stub.New(model)
		return Clients{Chat: c, Embed: NewEmbedCache(c, cfg.EmbedCacheSize), RawEmbed: c}
	}

	baseURL := cfg.OpenRouterBaseURL
	apiKey := cfg.OpenRouterAPIKey
	if apiKey == "" {
		apiKey = cfg.OpenAIAPIKey
		baseURL = cfg.OpenAIBaseURL
	}
	c := real.New(real.Config{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		ChatModel:      model,
		EmbeddingModel: cfg.EmbeddingsModel,
	})
	return Clients{Chat: c, Embed: NewEmbedCache(c, cfg.EmbedCacheSize), RawEmbed: c}
}
