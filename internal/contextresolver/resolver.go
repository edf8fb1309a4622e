// Package contextresolver extracts CV references from prior assistant turns
// so follow-up queries like "give me the full profile of the top candidate"
// can be resolved to a concrete name/cv_id (C3).
package contextresolver

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// CVReference is one {name, cv_id} pair recovered from an assistant message,
// with the percentage score when the reference appeared in a ranking row.
type CVReference struct {
	Name    string
	CVID    string
	Percent int // -1 when no percentage was present
}

const fixedPatternConfidence = 0.85

var (
	// [📄](cv:cv_abc) **Alice** 92%
	linkThenNameRe = regexp.MustCompile(`\[📄\]\(cv:([a-zA-Z0-9_-]+)\)\s*\*\*([^*]+)\*\*(?:\s+(\d{1,3})%)?`)
	// **[Alice](cv:cv_abc)**
	nameThenLinkRe = regexp.MustCompile(`\*\*\[([^\]]+)\]\(cv:([a-zA-Z0-9_-]+)\)\*\*(?:\s+(\d{1,3})%)?`)
	// Top Recommendation: Alice (cv:cv_abc)
	topRecommendationRe = regexp.MustCompile(`(?i)top recommendation:?\s*\**([A-Za-z][A-Za-z '.-]*)\**.*?\(cv:([a-zA-Z0-9_-]+)\)`)
	// ranking-row fallback: "Alice ... 92% ... cv:cv_abc"
	percentRowRe = regexp.MustCompile(`\*\*([A-Za-z][A-Za-z '.-]*)\*\*.*?(\d{1,3})%.*?cv:([a-zA-Z0-9_-]+)`)
)

// ExtractReferences scans an assistant message for every recognized
// CV-reference pattern and returns the de-duplicated list in the order first
// seen. Percent is -1 when the pattern carried no score.
func ExtractReferences(message string) []CVReference {
	var refs []CVReference
	seen := map[string]bool{}

	add := func(name, cvID string, percent int) {
		name = strings.TrimSpace(name)
		cvID = strings.TrimSpace(cvID)
		if name == "" || cvID == "" || seen[cvID] {
			return
		}
		seen[cvID] = true
		refs = append(refs, CVReference{Name: name, CVID: cvID, Percent: percent})
	}

	for _, m := range linkThenNameRe.FindAllStringSubmatch(message, -1) {
		add(m[2], m[1], parsePercentOrDefault(m[3]))
	}
	for _, m := range nameThenLinkRe.FindAllStringSubmatch(message, -1) {
		add(m[1], m[2], parsePercentOrDefault(m[3]))
	}
	for _, m := range topRecommendationRe.FindAllStringSubmatch(message, -1) {
		add(m[1], m[2], -1)
	}
	for _, m := range percentRowRe.FindAllStringSubmatch(message, -1) {
		percent, _ := strconv.Atoi(m[2])
		add(m[1], m[3], percent)
	}

	return refs
}

func parsePercentOrDefault(s string) int {
	if s == "" {
		return -1
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return p
}

// TopCandidates returns the two highest-percent references, falling back to
// first-seen order when no percentage was captured.
func TopCandidates(refs []CVReference) []CVReference {
	sorted := make([]CVReference, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percent > sorted[j].Percent
	})
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted
}

// lastAssistantMessage returns the most recent assistant turn in history, or
// "" if there is none.
func lastAssistantMessage(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}

var (
	topCandidateQueryRe   = regexp.MustCompile(`(?i)\b(top|best|first|winning|#1)\s+(candidate|recommendation|pick|match|result)\b`)
	previousResultsQueryRe = regexp.MustCompile(`(?i)\b(those|these|the above|previous|prior|earlier|all of them)\b`)
)

// ResolveQueryWithContext rewrites query by substituting a reference phrase
// ("the top candidate", "those candidates") with the candidate name(s)
// recovered from the most recent assistant message, per §4.2. ok is false
// when no CV-reference pattern was found in history at all.
func ResolveQueryWithContext(query string, history []domain.Message) (resolved string, name string, cvID string, ok bool) {
	last := lastAssistantMessage(history)
	if last == "" {
		return query, "", "", false
	}
	refs := ExtractReferences(last)
	if len(refs) == 0 {
		return query, "", "", false
	}

	if previousResultsQueryRe.MatchString(query) {
		names := make([]string, 0, len(refs))
		for _, r := range refs {
			names = append(names, r.Name)
		}
		return substituteReference(query, strings.Join(names, ", ")), "", "", true
	}

	top := TopCandidates(refs)
	if len(top) == 0 {
		return query, "", "", false
	}
	best := top[0]
	return substituteReference(query, best.Name), best.Name, best.CVID, true
}

func substituteReference(query, replacement string) string {
	if topCandidateQueryRe.MatchString(query) {
		return topCandidateQueryRe.ReplaceAllString(query, replacement)
	}
	if previousResultsQueryRe.MatchString(query) {
		return previousResultsQueryRe.ReplaceAllString(query, replacement)
	}
	return query + " (referring to " + replacement + ")"
}

// Confidence is the fixed confidence score assigned whenever any
// CV-reference pattern matched (§4.2).
func Confidence(refs []CVReference) float64 {
	if len(refs) == 0 {
		return 0
	}
	return fixedPatternConfidence
}
