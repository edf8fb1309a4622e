package structures

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// BuildSearch assembles the search structure: direct answer, the results
// table (with match scores already derived by C10), and analysis/
// conclusion (§4.10).
func BuildSearch(in BuildInput) (domain.StructuredResponse, error) {
	fields := map[string]any{
		"results_table": in.Output.TableData,
		"result_count":  len(in.Candidates()),
	}
	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeSearch),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}
