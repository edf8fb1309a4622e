package outputproc

import (
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const analysisMinChars = 50

// ExtractAnalysis returns the remainder of raw between the direct answer and
// the conclusion, stripped of tables and special blocks, but only when more
// than 50 chars of real content remain (§4.9).
func ExtractAnalysis(raw, directAnswer string) (string, []domain.ParsingWarning) {
	cleaned := stripNonAnswerBlocks(raw)

	remainder := cleaned
	if directAnswer != "" {
		if idx := strings.Index(remainder, directAnswer); idx >= 0 {
			remainder = remainder[idx+len(directAnswer):]
		}
	}

	var kept []string
	for _, p := range paragraphs(remainder) {
		if isContaminated(p) {
			continue
		}
		kept = append(kept, p)
	}
	analysis := strings.TrimSpace(strings.Join(kept, "\n\n"))

	if len(analysis) <= analysisMinChars {
		return "", []domain.ParsingWarning{{
			Stage:   "analysis",
			Message: "discarded: fewer than 50 chars of real content after stripping",
		}}
	}
	return analysis, nil
}
