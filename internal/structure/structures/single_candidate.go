package structures

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// BuildSingleCandidate assembles the single_candidate structure: summary,
// highlights, career, skills, credentials, the shared risk table, and the
// conclusion (§4.10).
func BuildSingleCandidate(in BuildInput) (domain.StructuredResponse, error) {
	candidate, ok := in.PrimaryCandidate()
	if !ok {
		return domain.StructuredResponse{}, fmt.Errorf("single_candidate: no candidate resolved from retrieved chunks")
	}
	meta := candidate.Metadata
	risk := modules.BuildRiskTable(meta)
	timeline := modules.BuildTimeline(meta)

	fields := map[string]any{
		"cv_id":          candidate.CVID,
		"candidate_name": candidate.CandidateName,
		"summary":        in.Output.DirectAnswer,
		"highlights":     in.Output.Analysis,
		"career":         timeline,
		"skills":         meta.Skills,
		"credentials": map[string]any{
			"education":      meta.Education,
			"certifications": meta.Certifications,
		},
		"risk_table": risk,
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeSingleCandidate),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
