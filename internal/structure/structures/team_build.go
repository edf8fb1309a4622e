package structures

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// BuildTeamBuild assembles the team_build structure: overview, member
// cards, skill matrix, synergy notes, team-level risks, and conclusion
// (§4.10).
func BuildTeamBuild(in BuildInput) (domain.StructuredResponse, error) {
	cands := in.Candidates()
	team := teamMembers(cands)

	cards := modules.BuildMemberCards(team)
	matrix := modules.BuildSkillMatrix(team)
	synergy := modules.BuildSynergy(team, matrix)
	risks := modules.BuildTeamRisks(team)

	fields := map[string]any{
		"overview":     in.Output.Analysis,
		"member_cards": cards,
		"skill_matrix": matrix,
		"synergy":      synergy,
		"risks":        risks,
		"team_size":    len(cands),
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeTeamBuild),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
