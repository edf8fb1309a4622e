package outputproc

import (
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const directAnswerMaxSentences = 3

// codeFenceRe matches a fenced code block, including the closing fence.
var codeFenceRe = regexp.MustCompile("(?s)```.*?```")

// promptArtifactPatterns catches leftover scaffolding the LLM sometimes
// echoes back (role markers, instruction headers) that should never surface
// as the direct answer.
var promptArtifactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(assistant|system|user)\s*:`),
	regexp.MustCompile(`(?i)^\s*here('?s| is) (the|my) (answer|response)\s*:?\s*$`),
	regexp.MustCompile(`(?i)^\s*\*{0,2}direct answer\*{0,2}\s*:?\s*$`),
}

var sentenceBoundaryRe = regexp.MustCompile(`(?s)[.!?](\s+|$)`)

// stripNonAnswerBlocks removes thinking/conclusion blocks, table rows, and
// code fences, leaving only prose paragraphs.
func stripNonAnswerBlocks(raw string) string {
	text := StripThinking(raw)
	text = StripConclusion(text)
	text = codeFenceRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if markdownTableRowRe.MatchString(l) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func paragraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isContaminated(paragraph string) bool {
	for _, re := range promptArtifactPatterns {
		if re.MatchString(paragraph) {
			return true
		}
	}
	return false
}

// ExtractDirectAnswer finds the first meaningful, uncontaminated paragraph
// after stripping thinking/conclusion/tables/code-blocks and known
// prompt-artifact patterns, truncated to at most 3 sentences (§4.9). If a
// paragraph is contaminated, it falls through to the next one.
func ExtractDirectAnswer(raw string) (string, []domain.ParsingWarning) {
	cleaned := stripNonAnswerBlocks(raw)
	var warnings []domain.ParsingWarning

	for _, p := range paragraphs(cleaned) {
		if isContaminated(p) {
			warnings = append(warnings, domain.ParsingWarning{
				Stage:   "direct_answer",
				Message: "skipped contaminated paragraph: " + truncateForWarning(p),
			})
			continue
		}
		return truncateToSentences(p, directAnswerMaxSentences), warnings
	}

	warnings = append(warnings, domain.ParsingWarning{
		Stage:   "direct_answer",
		Message: "no uncontaminated paragraph found",
	})
	return "", warnings
}

func truncateToSentences(text string, max int) string {
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 || len(locs) <= max {
		return text
	}
	end := locs[max-1][1]
	return strings.TrimSpace(text[:end])
}

func truncateForWarning(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
