package usecase

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Generator builds the final answer prompt and calls the generation LLM
// (C8).
type Generator struct {
	llm domain.LLM
}

// NewGenerator builds a Generator bound to the generation-stage LLM.
func NewGenerator(llm domain.LLM) *Generator {
	return &Generator{llm: llm}
}

// GenerateResult carries the raw LLM output plus the usage/latency figures
// the orchestrator folds into domain.Metrics.
type GenerateResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Model            string
}

// Generate builds the prompt from qu/history/results and calls the
// generation LLM (§4.7).
func (g *Generator) Generate(ctx domain.Context, qu domain.QueryUnderstanding, history []domain.Message, results []domain.SearchResult) (GenerateResult, error) {
	prompt := BuildGenerationPrompt(qu, history, results)
	res, err := g.llm.Generate(ctx, generationSystemPrompt, prompt)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("op=usecase.Generate: %w", err)
	}
	return GenerateResult{
		Text:             res.Text,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		LatencyMS:        res.LatencyMS,
		Model:            res.Model,
	}, nil
}
