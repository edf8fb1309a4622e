package structures

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
)

const topSkillCount = 10

// BuildSummary assembles the summary structure: direct answer with pool
// stats, skill/experience distributions, top skills, and conclusion
// (§4.10).
func BuildSummary(in BuildInput) (domain.StructuredResponse, error) {
	cands := in.Candidates()

	fields := map[string]any{
		"pool_size":               in.TotalCVs,
		"resolved_candidates":     len(cands),
		"top_skills":              topSkills(cands, topSkillCount),
		"experience_distribution": experienceDistribution(cands),
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeSummary),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
