// Package guardrail rejects off-topic or prompt-injection queries before
// the pipeline invokes any LLM (C5).
package guardrail

import (
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

const rejectionMessage = "I can only help with questions about the indexed CVs/candidates. Please rephrase your question around candidate experience, skills, or fit."

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?(?:prior|previous|above)\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(?:all\s+)?(?:prior|previous|your)\s+instructions`),
	regexp.MustCompile(`(?i)you are now\b`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)reveal\s+(?:your|the)\s+(?:system\s+)?prompt`),
	regexp.MustCompile(`(?i)act as (?:a|an)\b`),
	regexp.MustCompile(`(?i)jailbreak`),
}

// Guardrail holds the configured deny-list/topic allow-list used by Check.
type Guardrail struct {
	allowedTopics map[string]bool
	denyList      map[string]bool
}

// New builds a Guardrail from the seeded RAG taxonomy's guardrail lists.
func New(rag *config.RAGConfig) *Guardrail {
	return &Guardrail{
		allowedTopics: toSet(rag.GuardrailTopics),
		denyList:      toSet(rag.GuardrailDenyList),
	}
}

func toSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return out
}

// Check rejects qu/rawQuery when (a) C4 already flagged it as not
// CV-related, (b) rawQuery matches a prompt-injection heuristic, or (c)
// rawQuery contains a denied term and no allowed CV-related term (§4.4).
// pass=false returns the canned rejection message as reason.
func (g *Guardrail) Check(qu domain.QueryUnderstanding, rawQuery string) (pass bool, reason string) {
	if !qu.IsCVRelated {
		return false, rejectionMessage
	}
	for _, re := range injectionPatterns {
		if re.MatchString(rawQuery) {
			return false, rejectionMessage
		}
	}
	lower := strings.ToLower(rawQuery)
	if g.matchesDenyList(lower) && !g.matchesAllowedTopic(lower) {
		return false, rejectionMessage
	}
	return true, ""
}

func (g *Guardrail) matchesDenyList(lower string) bool {
	for term := range g.denyList {
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (g *Guardrail) matchesAllowedTopic(lower string) bool {
	for term := range g.allowedTopics {
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
