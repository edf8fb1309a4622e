package structures

import (
	"fmt"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// BuildRanking assembles the ranking structure: analysis, criteria table,
// the deterministic ranking table, top pick, and conclusion. Per §4.10 the
// conclusion/analysis are regenerated from the computed data when the
// LLM's free text disagrees with the computed top candidate.
func BuildRanking(in BuildInput) (domain.StructuredResponse, error) {
	cands := in.Candidates()
	if len(cands) == 0 {
		return domain.StructuredResponse{}, fmt.Errorf("ranking: no candidates resolved from retrieved chunks")
	}

	table := modules.BuildRankingTable(rankingCandidates(cands), in.RankingWeights)
	top := table.Rows[0]

	conclusion := in.Output.Conclusion
	analysis := in.Output.Analysis
	if !mentionsCandidate(conclusion, top.CandidateName) {
		conclusion = regenerateRankingConclusion(top, table.Rows)
		analysis = regenerateRankingAnalysis(table.Rows)
	}

	fields := map[string]any{
		"criteria_table": table,
		"ranking_table":  table.Rows,
		"top_pick": map[string]any{
			"cv_id":          top.CVID,
			"candidate_name": top.CandidateName,
			"overall":        top.Overall,
		},
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeRanking),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      analysis,
		Conclusion:    conclusion,
		Fields:        fields,
	}, nil
}

func mentionsCandidate(text, name string) bool {
	if name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(name))
}

func regenerateRankingConclusion(top domain.RankingRow, rows []domain.RankingRow) string {
	return fmt.Sprintf("Top pick: %s, scoring %.1f/100 overall across %d candidates.", top.CandidateName, top.Overall, len(rows))
}

func regenerateRankingAnalysis(rows []domain.RankingRow) string {
	var b strings.Builder
	b.WriteString("Computed ranking:\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s — %.1f/100\n", i+1, r.CandidateName, r.Overall)
	}
	return strings.TrimRight(b.String(), "\n")
}
