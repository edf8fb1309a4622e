// Package outputproc parses the generator's free-text markdown answer into
// the structured components consumed by the structure router (C10, §4.9).
// Each parser is a pure function of the raw text and returns its warnings
// alongside its result; none mutates its input. ExtractAnalysis also takes
// ExtractDirectAnswer's result, so the processor runs that one after it.
package outputproc

import (
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

var thinkingBlockRe = regexp.MustCompile(`(?is):::thinking\s*(.*?):::`)

// ExtractThinking pulls the content between `:::thinking … :::` markers, if
// present (§4.9).
func ExtractThinking(raw string) (string, []domain.ParsingWarning) {
	m := thinkingBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", nil
	}
	return strings.TrimSpace(m[1]), nil
}

// StripThinking removes the thinking block from raw, leaving the rest of the
// text for downstream parsers.
func StripThinking(raw string) string {
	return thinkingBlockRe.ReplaceAllString(raw, "")
}
