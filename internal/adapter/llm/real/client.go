// Package real implements domain.LLM and domain.Embedder against an
// OpenAI-compatible chat/embeddings API (OpenRouter in cloud mode).
package real

import (
	"context"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/cvqa/retrieval-engine/internal/adapter/llm"
	"github.com/cvqa/retrieval-engine/internal/adapter/llm/tokencount"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Config configures a Client.
type Config struct {
	APIKey         string
	BaseURL        string // e.g. https://openrouter.ai/api/v1
	ChatModel      string
	EmbeddingModel string
	MaxRetries     int
	RequestTimeout time.Duration
}

// Client implements domain.LLM and domain.Embedder over an OpenAI-compatible
// API, with a per-model circuit breaker around each call and bounded
// exponential-backoff retry around embedding calls; chat completions are
// attempted once. Grounded on the go-openai client-construction
// idiom used across the example pack (DefaultConfig + BaseURL override,
// single shared *openai.Client), with retry/circuit-breaker behavior
// adapted from the teacher's hand-rolled OpenRouter HTTP client.
type Client struct {
	client     *openai.Client
	cfg        Config
	breakers   *llm.CircuitBreakerRegistry
	tokencount *tokencount.Counter
}

// New builds a Client. cfg.MaxRetries defaults to 3 and cfg.RequestTimeout
// to 60s when zero.
func New(cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		cfg:        cfg,
		breakers:   llm.NewCircuitBreakerRegistry(),
		tokencount: tokencount.NewCounter(),
	}
}

// Generate implements domain.LLM.
func (c *Client) Generate(ctx domain.Context, systemPrompt, prompt string) (domain.GenerationResult, error) {
	breaker := c.breakers.For(c.cfg.ChatModel)
	if !breaker.Allow() {
		return domain.GenerationResult{}, fmt.Errorf("op=llm.Generate: %w: circuit open for model %s", domain.ErrUpstreamTimeout, c.cfg.ChatModel)
	}

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:    c.cfg.ChatModel,
		Messages: messages,
	})
	cancel()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		breaker.RecordFailure()
		return domain.GenerationResult{}, fmt.Errorf("op=llm.Generate: %w", err)
	}
	breaker.RecordSuccess()

	if len(resp.Choices) == 0 {
		return domain.GenerationResult{}, fmt.Errorf("op=llm.Generate: %w: no completion choices returned", domain.ErrInternal)
	}

	text := resp.Choices[0].Message.Content
	promptTokens, completionTokens := resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = c.tokencount.CountChatTokens(systemPrompt, prompt, c.cfg.ChatModel)
		completionTokens = c.tokencount.CountTokens(text, c.cfg.ChatModel)
	}

	return domain.GenerationResult{
		Text:             text,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		LatencyMS:        latency,
		Model:            c.cfg.ChatModel,
	}, nil
}

// EmbedTexts implements domain.Embedder.
func (c *Client) EmbedTexts(ctx domain.Context, texts []string) (domain.EmbeddingResult, error) {
	return c.embed(ctx, texts)
}

// EmbedQuery implements domain.Embedder.
func (c *Client) EmbedQuery(ctx domain.Context, text string) (domain.EmbeddingResult, error) {
	return c.embed(ctx, []string{text})
}

func (c *Client) embed(ctx domain.Context, texts []string) (domain.EmbeddingResult, error) {
	breaker := c.breakers.For(c.cfg.EmbeddingModel)
	if !breaker.Allow() {
		return domain.EmbeddingResult{}, fmt.Errorf("op=llm.Embed: %w: circuit open for model %s", domain.ErrUpstreamTimeout, c.cfg.EmbeddingModel)
	}

	start := time.Now()
	var resp openai.EmbeddingResponse
	err := c.withRetry(ctx, func() error {
		var callErr error
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
		resp, callErr = c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
		})
		return callErr
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		breaker.RecordFailure()
		return domain.EmbeddingResult{}, fmt.Errorf("op=llm.Embed: %w", err)
	}
	breaker.RecordSuccess()

	if len(resp.Data) != len(texts) {
		return domain.EmbeddingResult{}, fmt.Errorf("op=llm.Embed: %w: expected %d embeddings, got %d", domain.ErrInternal, len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	tokensUsed := resp.Usage.TotalTokens
	for _, d := range resp.Data {
		embeddings[d.Index] = d.Embedding
	}

	return domain.EmbeddingResult{Embeddings: embeddings, TokensUsed: tokensUsed, LatencyMS: latency}, nil
}

// withRetry runs op with bounded exponential backoff, stopping early on
// context cancellation or after cfg.MaxRetries retries (cfg.MaxRetries+1
// attempts in all).
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries))
	return backoff.Retry(func() error {
		err := op()
		if err != nil && isNonRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}

func isNonRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden")
}
