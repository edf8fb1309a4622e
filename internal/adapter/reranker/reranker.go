// Package reranker re-orders retrieved chunks by LLM-scored relevance (C7).
package reranker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const contentTruncateChars = 600

const rerankSystemPrompt = `You are a relevance scoring assistant. Given a query and a numbered list of CV chunks, score each chunk from 0.0 to 1.0 based on how relevant it is to the query. Return ONLY a JSON array of objects with "index" and "score" fields, e.g. [{"index":0,"score":0.92},{"index":1,"score":0.4}].`

// Reranker implements domain.Reranker by asking an LLM to score each
// retrieved chunk against the query, then re-sorting by that score. It
// never truncates the result set (§4.6): later stages still see every
// retrieved chunk, just reordered.
type Reranker struct {
	llm   domain.LLM
	model string
}

// New builds a Reranker. model is informational only (reported in
// metrics); the actual model routing happens inside the domain.LLM
// implementation.
func New(llm domain.LLM, model string) *Reranker {
	return &Reranker{llm: llm, model: model}
}

type scoreEntry struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rerank scores and reorders results. On any failure — LLM error,
// unparseable response — it returns the original order unchanged rather
// than treating the failure as fatal (§4.6).
func (r *Reranker) Rerank(ctx domain.Context, query string, results []domain.SearchResult) ([]domain.SearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	prompt := buildRerankPrompt(query, results)
	resp, err := r.llm.Generate(ctx, rerankSystemPrompt, prompt)
	if err != nil {
		return results, nil //nolint:nilerr // pass-through on LLM failure per §4.6
	}

	scores, ok := parseScores(resp.Text)
	if !ok {
		return results, nil
	}

	reordered := make([]domain.SearchResult, len(results))
	copy(reordered, results)
	order := make([]int, len(reordered))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	out := make([]domain.SearchResult, len(reordered))
	for i, idx := range order {
		out[i] = reordered[idx]
	}
	return out, nil
}

func buildRerankPrompt(query string, results []domain.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nChunks:\n", query)
	for i, res := range results {
		fmt.Fprintf(&sb, "[%d] (cv:%s) %s\n\n", i, res.CVID, truncate(res.Content, contentTruncateChars))
	}
	return sb.String()
}

func parseScores(raw string) (map[int]float64, bool) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var entries []scoreEntry
	if err := json.Unmarshal([]byte(content), &entries); err != nil {
		return nil, false
	}
	out := make(map[int]float64, len(entries))
	for _, e := range entries {
		out[e.Index] = e.Score
	}
	return out, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
