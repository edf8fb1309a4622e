package structures

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// BuildRiskAssessment assembles the risk_assessment structure: narrative
// risk analysis, the shared risk table, and an overall assessment line
// (§4.10).
func BuildRiskAssessment(in BuildInput) (domain.StructuredResponse, error) {
	candidate, ok := in.PrimaryCandidate()
	if !ok {
		return domain.StructuredResponse{}, fmt.Errorf("risk_assessment: no candidate resolved from retrieved chunks")
	}
	risk := modules.BuildRiskTable(candidate.Metadata)

	fields := map[string]any{
		"cv_id":          candidate.CVID,
		"candidate_name": candidate.CandidateName,
		"risk_table":     risk,
		"assessment":     risk.Summary,
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeRiskAssessment),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
