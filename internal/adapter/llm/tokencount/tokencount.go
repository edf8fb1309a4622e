// Package tokencount estimates prompt/completion token counts for
// OpenRouter-style model ids, used as a fallback when a provider response
// omits usage figures.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter caches tiktoken encodings per normalized model id.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewCounter builds an empty Counter.
func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	key := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[key]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[key] = enc
	return enc, nil
}

// normalizeModelName strips OpenRouter provider prefixes/`:free` suffixes
// and maps model families onto a tiktoken-compatible encoding name; every
// unrecognized family falls back to the gpt-4/cl100k_base encoding, which
// is a reasonable token-count approximation across modern chat models.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		model = model[idx+1:]
	}
	model = strings.TrimSuffix(model, ":free")

	switch {
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		return "gpt-4"
	}
}

// CountTokens returns the token count of text under model's encoding. On any
// encoding-resolution error it logs and falls back to a ~4-chars-per-token
// estimate rather than failing the caller.
func (c *Counter) CountTokens(text, model string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		slog.Warn("tokencount: falling back to char estimate", slog.String("model", model), slog.Any("error", err))
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// CountChatTokens estimates prompt tokens for a system+user chat turn,
// including the OpenAI-documented per-message/per-role overhead.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		return (len(systemPrompt) + len(userPrompt)) / 4
	}

	const tokensPerMessage, tokensPerRole = 3, 1
	n := 0
	n += tokensPerMessage + len(enc.Encode("system", nil, nil)) + len(enc.Encode(systemPrompt, nil, nil)) + tokensPerRole
	n += tokensPerMessage + len(enc.Encode("user", nil, nil)) + len(enc.Encode(userPrompt, nil, nil)) + tokensPerRole
	n += 3 // reply primer
	return n
}
