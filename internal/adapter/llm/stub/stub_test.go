package stub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ReferencesCVIDsFromPrompt(t *testing.T) {
	c := New("")
	res, err := c.Generate(context.Background(), "sys", "Question\n\n[cv:cv_1] (section=experience, score=0.90)\nLed the team.\n")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "[cv:cv_1]")
}

func TestGenerate_NoChunksReturnsCannedNoInfoAnswer(t *testing.T) {
	c := New("")
	res, err := c.Generate(context.Background(), "sys", "no chunks here")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "don't have enough")
}

func TestEmbedTexts_DeterministicAcrossCalls(t *testing.T) {
	c := New("")
	a, err := c.EmbedTexts(context.Background(), []string{"hello"})
	require.NoError(t, err)
	b, err := c.EmbedTexts(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, a.Embeddings[0], b.Embeddings[0])
}

func TestEmbedTexts_DifferentTextsProduceDifferentVectors(t *testing.T) {
	c := New("")
	a, _ := c.EmbedTexts(context.Background(), []string{"alpha"})
	b, _ := c.EmbedTexts(context.Background(), []string{"beta"})
	assert.NotEqual(t, a.Embeddings[0], b.Embeddings[0])
}

func TestEmbedQuery_ReturnsUnitLengthVector(t *testing.T) {
	c := New("")
	res, err := c.EmbedQuery(context.Background(), "some query text")
	require.NoError(t, err)
	var sumSq float64
	for _, v := range res.Embeddings[0] {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSq, 0.01)
}
