package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestDispatch_RoutesKnownQueryTypesToTheirStructure(t *testing.T) {
	results := []domain.SearchResult{{CVID: "cv_1", Metadata: domain.EnrichedMetadata{Skills: []string{"go"}}}}

	cases := []domain.QueryType{
		domain.QueryTypeSingleCandidate,
		domain.QueryTypeRiskAssessment,
		domain.QueryTypeRedFlags,
		domain.QueryTypeComparison,
		domain.QueryTypeSearch,
		domain.QueryTypeRanking,
		domain.QueryTypeJobMatch,
		domain.QueryTypeTeamBuild,
		domain.QueryTypeVerification,
		domain.QueryTypeSummary,
		domain.QueryTypeAdaptive,
		domain.QueryTypeInitial,
	}
	for _, qt := range cases {
		resp, err := Dispatch(qt, BuildInput{Results: results})
		require.NoErrorf(t, err, "query type %s", qt)
		assert.NotEmptyf(t, resp.StructureType, "query type %s", qt)
	}
}

func TestDispatch_UnknownQueryTypeFallsBackToAdaptive(t *testing.T) {
	resp, err := Dispatch(domain.QueryType("nonsense"), BuildInput{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.QueryTypeAdaptive), resp.StructureType)
}
