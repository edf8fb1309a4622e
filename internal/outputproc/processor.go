package outputproc

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Process runs all five component parsers over the generator's raw markdown
// answer and assembles a StructuredOutput (§4.9). When the LLM produced no
// table but results are available, a fallback table is generated from the
// retrieved chunks instead, and FallbackUsed is set.
func Process(raw string, results []domain.SearchResult) domain.StructuredOutput {
	var warnings []domain.ParsingWarning

	thinking, w := ExtractThinking(raw)
	warnings = append(warnings, w...)

	conclusion, w := ExtractConclusion(raw)
	warnings = append(warnings, w...)

	directAnswer, w := ExtractDirectAnswer(raw)
	warnings = append(warnings, w...)

	analysis, w := ExtractAnalysis(raw, directAnswer)
	warnings = append(warnings, w...)

	rows, w := ParseTables(raw)
	warnings = append(warnings, w...)

	fallbackUsed := false
	if len(rows) == 0 && len(results) > 0 {
		rows = FallbackTableFromResults(results)
		fallbackUsed = true
	}

	return domain.StructuredOutput{
		DirectAnswer:    directAnswer,
		RawContent:      raw,
		Thinking:        thinking,
		Analysis:        analysis,
		Conclusion:      conclusion,
		TableData:       rows,
		CVReferences:    cvReferencesFromRows(rows),
		ParsingWarnings: warnings,
		FallbackUsed:    fallbackUsed,
	}
}

func cvReferencesFromRows(rows []domain.TableRow) []string {
	var out []string
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.CVID == "" || seen[r.CVID] {
			continue
		}
		seen[r.CVID] = true
		out = append(out, r.CVID)
	}
	return out
}
