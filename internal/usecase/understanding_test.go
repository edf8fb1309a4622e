package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

type fakeUnderstandLLM struct {
	text string
	err  error
}

func (f *fakeUnderstandLLM) Generate(_ domain.Context, _, _ string) (domain.GenerationResult, error) {
	if f.err != nil {
		return domain.GenerationResult{}, f.err
	}
	return domain.GenerationResult{Text: f.text}, nil
}

func TestUnderstand_ParsesClassification(t *testing.T) {
	llm := &fakeUnderstandLLM{text: `{"is_cv_related": true, "type": "ranking", "understood": "rank backend engineers", "reformulated_prompt": "Rank candidates by backend experience", "requirements": ["Go", "Kubernetes"]}`}
	u := NewQueryUnderstander(llm)
	qu, err := u.Understand(context.Background(), "who's the best backend dev?")
	require.NoError(t, err)
	assert.True(t, qu.IsCVRelated)
	assert.Equal(t, domain.QueryTypeRanking, qu.Type)
	assert.Equal(t, []string{"Go", "Kubernetes"}, qu.Requirements)
	assert.Equal(t, "Rank candidates by backend experience", qu.ReformulatedPrompt)
}

func TestUnderstand_UnknownTypeFallsBackToSearch(t *testing.T) {
	llm := &fakeUnderstandLLM{text: `{"is_cv_related": true, "type": "not_a_real_type"}`}
	u := NewQueryUnderstander(llm)
	qu, err := u.Understand(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeSearch, qu.Type)
}

func TestUnderstand_NonCVRelatedIsFlagged(t *testing.T) {
	llm := &fakeUnderstandLLM{text: `{"is_cv_related": false, "type": "search"}`}
	u := NewQueryUnderstander(llm)
	qu, err := u.Understand(context.Background(), "what's the weather?")
	require.NoError(t, err)
	assert.False(t, qu.IsCVRelated)
}

func TestUnderstand_LLMErrorDegradesToFallback(t *testing.T) {
	u := NewQueryUnderstander(&fakeUnderstandLLM{err: errors.New("boom")})
	qu, err := u.Understand(context.Background(), "who has AWS experience?")
	assert.Error(t, err)
	assert.True(t, qu.IsCVRelated)
	assert.Equal(t, domain.QueryTypeSearch, qu.Type)
	assert.Equal(t, "who has AWS experience?", qu.ReformulatedPrompt)
}

func TestUnderstand_UnparsableResponseDegradesToFallback(t *testing.T) {
	u := NewQueryUnderstander(&fakeUnderstandLLM{text: "not json"})
	qu, err := u.Understand(context.Background(), "q")
	assert.Error(t, err)
	assert.True(t, qu.IsCVRelated)
}
