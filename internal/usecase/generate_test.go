package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

type fakeGenLLM struct {
	result domain.GenerationResult
	err    error
	lastSystemPrompt, lastPrompt string
}

func (f *fakeGenLLM) Generate(_ domain.Context, systemPrompt, prompt string) (domain.GenerationResult, error) {
	f.lastSystemPrompt = systemPrompt
	f.lastPrompt = prompt
	if f.err != nil {
		return domain.GenerationResult{}, f.err
	}
	return f.result, nil
}

func TestBuildGenerationPrompt_IncludesRequirementsAndChunks(t *testing.T) {
	qu := domain.QueryUnderstanding{
		ReformulatedPrompt: "What is Alice's Go experience?",
		Requirements:       []string{"Go", "Kubernetes"},
	}
	results := []domain.SearchResult{
		{CVID: "cv_1", SectionType: domain.SectionExperience, Content: "Led the Go migration.", Similarity: 0.9},
	}
	prompt := BuildGenerationPrompt(qu, nil, results)
	assert.Contains(t, prompt, "What is Alice's Go experience?")
	assert.Contains(t, prompt, "- Go")
	assert.Contains(t, prompt, "- Kubernetes")
	assert.Contains(t, prompt, "[cv:cv_1]")
	assert.Contains(t, prompt, "Led the Go migration.")
}

func TestBuildGenerationPrompt_LimitsHistoryToRecentTurns(t *testing.T) {
	var history []domain.Message
	for i := 0; i < 10; i++ {
		history = append(history, domain.Message{Role: domain.RoleUser, Content: "turn"})
	}
	prompt := BuildGenerationPrompt(domain.QueryUnderstanding{}, history, nil)
	assert.Equal(t, historyTurnLimit, strings.Count(prompt, "user: turn"))
}

func TestGenerator_Generate_ReturnsUsageFields(t *testing.T) {
	llm := &fakeGenLLM{result: domain.GenerationResult{Text: "answer", PromptTokens: 10, CompletionTokens: 20, Model: "gpt"}}
	g := NewGenerator(llm)
	res, err := g.Generate(context.Background(), domain.QueryUnderstanding{ReformulatedPrompt: "q"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, 10, res.PromptTokens)
	assert.Equal(t, "gpt", res.Model)
	assert.Equal(t, generationSystemPrompt, llm.lastSystemPrompt)
}

func TestGenerator_Generate_PropagatesError(t *testing.T) {
	g := NewGenerator(&fakeGenLLM{err: errors.New("boom")})
	_, err := g.Generate(context.Background(), domain.QueryUnderstanding{}, nil, nil)
	assert.Error(t, err)
}
