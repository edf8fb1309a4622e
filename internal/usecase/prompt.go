package usecase

import (
	"fmt"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// historyTurnLimit is the number of most-recent conversation turns folded
// into the generation prompt (§4.7).
const historyTurnLimit = 6

const generationSystemPrompt = `You are a recruiting assistant answering questions about a pool of indexed résumés (CVs). Base every factual claim strictly on the provided chunks; never invent experience, skills, or dates that are not present in them. Cite candidates by name and reference their source with the literal form [📄](cv:cv_id). When comparing or ranking candidates, be explicit about the evidence behind each score. If the provided chunks do not contain enough information to answer, say so plainly rather than guessing.`

// BuildGenerationPrompt assembles the final prompt from the system
// preamble (passed separately to domain.LLM.Generate), the last K turns of
// conversation history, the reformulated question, the retrieved chunks
// rendered with cv_id and section type, and the explicit requirements list
// (§4.7).
func BuildGenerationPrompt(qu domain.QueryUnderstanding, history []domain.Message, results []domain.SearchResult) string {
	var sb strings.Builder

	if recent := recentHistory(history, historyTurnLimit); len(recent) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, msg := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(qu.ReformulatedPrompt)
	sb.WriteString("\n\n")

	if len(qu.Requirements) > 0 {
		sb.WriteString("Explicit requirements to address:\n")
		for _, req := range qu.Requirements {
			fmt.Fprintf(&sb, "- %s\n", req)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Retrieved CV chunks:\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "[cv:%s] (section=%s, score=%.2f)\n%s\n\n", r.CVID, r.SectionType, r.Similarity, r.Content)
	}

	return sb.String()
}

func recentHistory(history []domain.Message, k int) []domain.Message {
	if len(history) <= k {
		return history
	}
	return history[len(history)-k:]
}

// GenerationSystemPrompt is the fixed system preamble used by the
// generator (exported for the orchestrator/tests).
func GenerationSystemPrompt() string { return generationSystemPrompt }
