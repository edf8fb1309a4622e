// Package stub provides a deterministic, network-free domain.LLM and
// domain.Embedder used in local mode (no OPENROUTER_API_KEY configured) and
// in tests/demos, grounded on the teacher's own MockClient
// (internal/adapter/ai/mock.go) hand-written-fake pattern.
package stub

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const embeddingDims = 256

// Client is a deterministic local-mode LLM/Embedder: embeddings are a
// stable hash projection of the input text (cosine-comparable but not
// semantically meaningful), and Generate returns a templated answer built
// directly from the prompt so the pipeline can be exercised end-to-end
// without network access.
type Client struct {
	model string
}

// New builds a stub Client reporting modelName as its Model field.
func New(modelName string) *Client {
	if modelName == "" {
		modelName = "local-stub"
	}
	return &Client{model: modelName}
}

// Generate implements domain.LLM by echoing a templated, deterministic
// answer referencing every `[cv:...]` chunk id present in prompt, so
// downstream parsing/verification has something concrete to check.
func (c *Client) Generate(_ domain.Context, _, prompt string) (domain.GenerationResult, error) {
	ids := cvIDsIn(prompt)

	var b strings.Builder
	if len(ids) == 0 {
		b.WriteString("I don't have enough indexed information to answer that question.")
	} else {
		fmt.Fprintf(&b, "Based on the retrieved CV material, %s appear most relevant to this question. ", strings.Join(quoteRefs(ids), ", "))
		b.WriteString("Their indexed experience and skills directly address the requirements described above.\n\n:::conclusion\n")
		fmt.Fprintf(&b, "%s is the strongest match based on the retrieved evidence.\n:::", quoteRefs(ids)[0])
	}

	text := b.String()
	return domain.GenerationResult{
		Text:             text,
		PromptTokens:     len(strings.Fields(prompt)),
		CompletionTokens: len(strings.Fields(text)),
		Model:            c.model,
	}, nil
}

func quoteRefs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "[cv:" + id + "]"
	}
	return out
}

var cvIDPrefix = "[cv:"

func cvIDsIn(prompt string) []string {
	seen := make(map[string]bool)
	var out []string
	rest := prompt
	for {
		idx := strings.Index(rest, cvIDPrefix)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(cvIDPrefix):]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		id := rest[:end]
		rest = rest[end:]
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// EmbedTexts implements domain.Embedder.
func (c *Client) EmbedTexts(_ domain.Context, texts []string) (domain.EmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = hashEmbedding(t)
	}
	return domain.EmbeddingResult{Embeddings: embeddings}, nil
}

// EmbedQuery implements domain.Embedder.
func (c *Client) EmbedQuery(_ domain.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embeddings: [][]float32{hashEmbedding(text)}}, nil
}

// hashEmbedding derives a unit-ish vector deterministically from text: each
// dimension is seeded by hashing text with the dimension index, so the same
// text always maps to the same vector and different texts spread across
// dimensions roughly uniformly.
func hashEmbedding(text string) []float32 {
	vec := make([]float32, embeddingDims)
	var norm float64
	for i := range vec {
		h := fnv.New32a()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i), byte(i >> 8)})
		v := float32(h.Sum32()%2000)/1000 - 1 // in [-1, 1)
		vec[i] = v
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
