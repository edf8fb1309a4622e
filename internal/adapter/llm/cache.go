package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// EmbedCache wraps a domain.Embedder with a FIFO-eviction cache keyed by
// text hash, so repeated queries (and re-chunked identical CV sections)
// don't re-pay embedding cost. Only EmbedTexts/EmbedQuery are cached; the
// wrapped embedder is called directly for cache misses.
type EmbedCache struct {
	base     domain.Embedder
	capacity int
	mu       sync.RWMutex
	vectors  map[string][]float32
	order    []string
}

// NewEmbedCache wraps base with a cache of the given capacity. capacity<=0
// disables caching and returns base unchanged.
func NewEmbedCache(base domain.Embedder, capacity int) domain.Embedder {
	if capacity <= 0 || base == nil {
		return base
	}
	return &EmbedCache{base: base, capacity: capacity, vectors: make(map[string][]float32, capacity)}
}

// EmbedTexts embeds texts, serving cached vectors where available and
// batching the remainder through base.
func (c *EmbedCache) EmbedTexts(ctx domain.Context, texts []string) (domain.EmbeddingResult, error) {
	result := domain.EmbeddingResult{Embeddings: make([][]float32, len(texts))}

	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		if v, ok := c.get(t); ok {
			result.Embeddings[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missIdx) == 0 {
		return result, nil
	}

	miss, err := c.base.EmbedTexts(ctx, missTexts)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	for j, idx := range missIdx {
		result.Embeddings[idx] = miss.Embeddings[j]
		c.put(missTexts[j], miss.Embeddings[j])
	}
	result.TokensUsed = miss.TokensUsed
	result.LatencyMS = miss.LatencyMS
	return result, nil
}

// EmbedQuery embeds a single query, consulting the cache first.
func (c *EmbedCache) EmbedQuery(ctx domain.Context, text string) (domain.EmbeddingResult, error) {
	if v, ok := c.get(text); ok {
		return domain.EmbeddingResult{Embeddings: [][]float32{v}}, nil
	}
	res, err := c.base.EmbedQuery(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if len(res.Embeddings) == 1 {
		c.put(text, res.Embeddings[0])
	}
	return res, nil
}

func (c *EmbedCache) get(text string) ([]float32, bool) {
	key := cacheKey(text)
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[key]
	return v, ok
}

func (c *EmbedCache) put(text string, vec []float32) {
	key := cacheKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.vectors[key]; exists {
		c.vectors[key] = vec
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.vectors, oldest)
	}
	c.vectors[key] = vec
	c.order = append(c.order, key)
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}
