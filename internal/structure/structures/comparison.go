package structures

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// BuildComparison assembles the comparison structure: analysis, the
// LLM-produced comparison table (already parsed by C10), and conclusion
// (§4.10).
func BuildComparison(in BuildInput) (domain.StructuredResponse, error) {
	fields := map[string]any{
		"candidates":       in.Candidates(),
		"comparison_table": in.Output.TableData,
	}
	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeComparison),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
