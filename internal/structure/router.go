// Package structure dispatches a resolved query to the typed response
// structure its query type implies (C11), delegating the actual assembly
// to internal/structure/structures (C12).
package structure

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/structures"
)

// BuildInput is re-exported so callers only need to import this package.
type BuildInput = structures.BuildInput

// Builder assembles one structure type from a BuildInput.
type Builder func(structures.BuildInput) (domain.StructuredResponse, error)

// registry maps each query type to its structure builder. red_flags reuses
// risk_assessment's shared risk table (§4.10 names no dedicated structure
// for it); initial falls through to adaptive, since the first turn of a
// session has no prior structure_type to dispatch on.
var registry = map[domain.QueryType]Builder{
	domain.QueryTypeSingleCandidate: structures.BuildSingleCandidate,
	domain.QueryTypeRiskAssessment:  structures.BuildRiskAssessment,
	domain.QueryTypeRedFlags:        structures.BuildRiskAssessment,
	domain.QueryTypeComparison:      structures.BuildComparison,
	domain.QueryTypeSearch:          structures.BuildSearch,
	domain.QueryTypeRanking:         structures.BuildRanking,
	domain.QueryTypeJobMatch:        structures.BuildJobMatch,
	domain.QueryTypeTeamBuild:       structures.BuildTeamBuild,
	domain.QueryTypeVerification:    structures.BuildVerification,
	domain.QueryTypeSummary:         structures.BuildSummary,
	domain.QueryTypeAdaptive:        structures.BuildAdaptive,
	domain.QueryTypeInitial:         structures.BuildAdaptive,
}

// Dispatch picks the structure builder for queryType and runs it. Unknown
// or unmapped query types fall back to the adaptive structure rather than
// erroring, per §4.10's description of adaptive as the catch-all.
func Dispatch(queryType domain.QueryType, in structures.BuildInput) (domain.StructuredResponse, error) {
	builder, ok := registry[queryType]
	if !ok {
		builder = structures.BuildAdaptive
	}
	return builder(in)
}
