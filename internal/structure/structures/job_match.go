package structures

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// candidateMatch is one candidate's per-requirement breakdown within the
// job_match structure.
type candidateMatch struct {
	CVID          string                     `json:"cv_id"`
	CandidateName string                     `json:"candidate_name"`
	Matches       domain.MatchScoreResult    `json:"matches"`
	Gaps          []domain.GapAnalysisItem   `json:"gaps"`
}

// BuildJobMatch assembles the job_match structure: requirements, each
// candidate's met/partial/missing breakdown, the best match with its
// overall_score, gap analysis, and conclusion (§4.10).
func BuildJobMatch(in BuildInput) (domain.StructuredResponse, error) {
	cands := in.Candidates()
	if len(cands) == 0 {
		return domain.StructuredResponse{}, fmt.Errorf("job_match: no candidates resolved from retrieved chunks")
	}
	requirements := in.RequiredSkills
	if len(requirements) == 0 {
		requirements = in.Understanding.Requirements
	}

	matches := make([]candidateMatch, 0, len(cands))
	var best *candidateMatch
	for _, c := range cands {
		checks := skillChecks(c.Metadata, requirements)
		result := modules.BuildMatchScore(checks)
		gaps := modules.BuildGapAnalysis(c.Metadata, requirements)
		cm := candidateMatch{CVID: c.CVID, CandidateName: c.CandidateName, Matches: result, Gaps: gaps}
		matches = append(matches, cm)
		if best == nil || cm.Matches.Overall > best.Matches.Overall {
			b := cm
			best = &b
		}
	}

	fields := map[string]any{
		"requirements": requirements,
		"candidates":   matches,
	}
	if best != nil {
		fields["best_match"] = map[string]any{
			"cv_id":          best.CVID,
			"candidate_name": best.CandidateName,
			"overall_score":  best.Matches.Overall,
		}
		fields["gap_analysis"] = best.Gaps
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeJobMatch),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}

func skillChecks(metadata domain.EnrichedMetadata, requirements []string) []modules.RequirementCheck {
	have := make(map[string]bool, len(metadata.Skills))
	for _, s := range metadata.Skills {
		have[lower(s)] = true
	}
	checks := make([]modules.RequirementCheck, 0, len(requirements))
	for _, req := range requirements {
		checks = append(checks, modules.RequirementCheck{
			Requirement: req,
			Satisfied:   have[lower(req)],
		})
	}
	return checks
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
