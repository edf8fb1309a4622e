package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescaleIfFused_NoFusedScores(t *testing.T) {
	in := []SearchResult{{Similarity: 0.8}, {Similarity: 0.2}}
	out := RescaleIfFused(in)
	assert.Equal(t, in, out)
}

func TestRescaleIfFused_RescalesAboveOne(t *testing.T) {
	in := []SearchResult{{Similarity: 2.0}, {Similarity: 1.0}}
	out := RescaleIfFused(in)
	require.Len(t, out, 2)
	assert.InDelta(t, 1.0, out[0].Similarity, 1e-9)
	assert.InDelta(t, 0.5, out[1].Similarity, 1e-9)
}

func TestRescaleIfFused_Empty(t *testing.T) {
	assert.Empty(t, RescaleIfFused(nil))
}

func TestScoringProfile_Normalize(t *testing.T) {
	p := &ScoringProfile{Weights: map[string]float64{"a": 2, "b": 2}}
	p.Normalize()
	assert.InDelta(t, 0.5, p.Weights["a"], 1e-9)
	assert.InDelta(t, 0.5, p.Weights["b"], 1e-9)

	sum := 0.0
	for _, w := range p.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestScoringProfile_Normalize_ZeroSumNoop(t *testing.T) {
	p := &ScoringProfile{Weights: map[string]float64{"a": 0}}
	p.Normalize()
	assert.Equal(t, 0.0, p.Weights["a"])
}

func TestEnrichedMetadata_Accessors(t *testing.T) {
	m := EnrichedMetadata{
		LanguageFlags:      map[string]bool{"french": true},
		CertificationFlags: map[string]bool{"aws": true},
		Extra:              map[string]any{"note": "estimated"},
	}
	assert.True(t, m.SpeaksLanguage("french"))
	assert.False(t, m.SpeaksLanguage("spanish"))
	assert.True(t, m.HasCertification("aws"))
	assert.False(t, m.HasCertification("gcp"))
	assert.Equal(t, "estimated", m.ExtraString("note"))
	assert.Equal(t, "", m.ExtraString("missing"))
}

func TestEnrichedMetadata_AccessorsNilMaps(t *testing.T) {
	var m EnrichedMetadata
	assert.False(t, m.SpeaksLanguage("french"))
	assert.False(t, m.HasCertification("aws"))
	assert.Equal(t, "", m.ExtraString("note"))
}
