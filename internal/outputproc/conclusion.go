package outputproc

import (
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

var conclusionBlockRe = regexp.MustCompile(`(?is):::conclusion\s*(.*?):::`)

// affirmativeMarkerRe matches leading affirmative language ("Yes,",
// "confirmed", "verified") that a conflict-fixer must strip when the
// computed verdict disagrees with an affirmative LLM conclusion (§4.10
// verification structure).
var affirmativeMarkerRe = regexp.MustCompile(`(?i)^\s*(yes,?\s*|confirmed\b\.?\s*|verified\b\.?\s*)`)

// ExtractConclusion pulls the content between `:::conclusion … :::` markers
// (§4.9).
func ExtractConclusion(raw string) (string, []domain.ParsingWarning) {
	m := conclusionBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", nil
	}
	return strings.TrimSpace(m[1]), nil
}

// StripConclusion removes the conclusion block from raw.
func StripConclusion(raw string) string {
	return conclusionBlockRe.ReplaceAllString(raw, "")
}

// ReconcileConclusion rewrites an affirmative conclusion when the computed
// verdict contradicts it (§4.10: "conflict-fixer rewrites affirmative
// conclusions when verdict is NOT_FOUND/CONTRADICTED"). Used by the
// verification structure after the router computes its own verdict from
// data rather than trusting the LLM's conclusion text.
func ReconcileConclusion(conclusion, verdict string) string {
	if verdict != "NOT_FOUND" && verdict != "CONTRADICTED" {
		return conclusion
	}
	if !affirmativeMarkerRe.MatchString(conclusion) {
		return conclusion
	}
	rest := affirmativeMarkerRe.ReplaceAllString(conclusion, "")
	if verdict == "NOT_FOUND" {
		return "Unable to verify: " + rest
	}
	return "Contradicted by the retrieved evidence: " + rest
}
