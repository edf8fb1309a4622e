package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestMarshalUnmarshalMetadata_RoundTrips(t *testing.T) {
	m := domain.EnrichedMetadata{
		TotalExperienceYears: 5.5,
		Seniority:            domain.SenioritySenior,
		Skills:               []string{"Go", "Kubernetes"},
	}
	raw, err := marshalMetadata(m)
	require.NoError(t, err)

	var out domain.EnrichedMetadata
	require.NoError(t, unmarshalMetadata(raw, &out))
	assert.Equal(t, m.TotalExperienceYears, out.TotalExperienceYears)
	assert.Equal(t, m.Seniority, out.Seniority)
	assert.Equal(t, m.Skills, out.Skills)
}

func TestUnmarshalMetadata_EmptyStringIsNoOp(t *testing.T) {
	var out domain.EnrichedMetadata
	assert.NoError(t, unmarshalMetadata("", &out))
}
