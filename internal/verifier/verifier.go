// Package verifier combines an LLM groundedness check with a heuristic
// entity/cv-id check into the combined confidence reported on RAGResponse
// (C9).
package verifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const (
	groundednessWeight = 0.6
	heuristicWeight    = 0.4
	passThreshold      = 0.5
)

const verifySystemPrompt = `You are a fact-checking assistant. You are given an answer and the CV chunks it was generated from. For each factual claim in the answer, decide whether it is supported by the chunks.

Respond with ONLY a JSON object of this shape, no prose, no code fences:
{"groundedness": 0.0-1.0, "verified_claims": ["..."], "ungrounded_claims": ["..."]}

groundedness is the fraction of claims that are supported. If the answer makes no checkable factual claims, return groundedness 1.0 with empty arrays.`

// Verifier runs the combined LLM + heuristic groundedness check (§4.8).
type Verifier struct {
	llm domain.LLM
}

// New builds a Verifier. llm may be nil, in which case Verify falls back to
// the heuristic check alone.
func New(llm domain.LLM) *Verifier {
	return &Verifier{llm: llm}
}

type llmVerifyResponse struct {
	Groundedness     float64  `json:"groundedness"`
	VerifiedClaims   []string `json:"verified_claims"`
	UngroundedClaims []string `json:"ungrounded_claims"`
}

// Verify checks answer against the retrieved chunks it was built from,
// combining an LLM groundedness score with a heuristic cv_id/name mention
// check (§4.8). It never returns an error: a failed LLM call degrades to the
// heuristic score alone, matching the reranker's fail-open contract.
func (v *Verifier) Verify(ctx domain.Context, query, answer string, results []domain.SearchResult) domain.VerificationInfo {
	heuristicConfidence, unverifiedCVIDs := v.heuristicVerify(answer, results)

	if v.llm == nil {
		return finalize(domain.VerificationInfo{
			HeuristicConfidence: heuristicConfidence,
			Combined:            heuristicConfidence,
			UnverifiedCVIDs:     unverifiedCVIDs,
		})
	}

	groundedness, verified, ungrounded, err := v.llmVerify(ctx, query, answer, results)
	if err != nil {
		return finalize(domain.VerificationInfo{
			HeuristicConfidence: heuristicConfidence,
			Combined:            heuristicConfidence,
			UnverifiedCVIDs:     unverifiedCVIDs,
		})
	}

	combined := groundednessWeight*groundedness + heuristicWeight*heuristicConfidence
	return finalize(domain.VerificationInfo{
		Groundedness:        groundedness,
		HeuristicConfidence: heuristicConfidence,
		Combined:            combined,
		VerifiedClaims:      verified,
		UngroundedClaims:    ungrounded,
		UnverifiedCVIDs:     unverifiedCVIDs,
	})
}

func finalize(info domain.VerificationInfo) domain.VerificationInfo {
	info.Passed = info.Combined >= passThreshold
	return info
}

func (v *Verifier) llmVerify(ctx domain.Context, query, answer string, results []domain.SearchResult) (groundedness float64, verified, ungrounded []string, err error) {
	prompt := buildVerifyPrompt(query, answer, results)
	res, err := v.llm.Generate(ctx, verifySystemPrompt, prompt)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("op=verifier.llmVerify: %w", err)
	}

	raw := strings.TrimSpace(res.Text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed llmVerifyResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return 0, nil, nil, fmt.Errorf("op=verifier.llmVerify: parse response: %w", err)
	}
	if parsed.Groundedness < 0 {
		parsed.Groundedness = 0
	}
	if parsed.Groundedness > 1 {
		parsed.Groundedness = 1
	}
	return parsed.Groundedness, parsed.VerifiedClaims, parsed.UngroundedClaims, nil
}

func buildVerifyPrompt(query, answer string, results []domain.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nAnswer to verify:\n%s\n\nSource chunks:\n", query, answer)
	for _, r := range results {
		fmt.Fprintf(&b, "[cv:%s]\n%s\n\n", r.CVID, truncate(r.Content, 500))
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var cvIDMentionRe = regexp.MustCompile(`cv:([a-zA-Z0-9_-]+)`)

// heuristicVerify extracts cv_id mentions from the answer and checks that
// each appears in the retrieved result set; any mentioned cv_id absent from
// results is collected as unverified (§4.8 step 2). Candidate names in the
// answer are not checked. Confidence is the fraction of mentioned cv_ids that were verified,
// defaulting to 1 when the answer names no cv_ids at all.
func (v *Verifier) heuristicVerify(answer string, results []domain.SearchResult) (confidence float64, unverified []string) {
	known := make(map[string]bool, len(results))
	knownNames := make(map[string]bool, len(results))
	for _, r := range results {
		known[r.CVID] = true
		if name := r.Metadata.ExtraString("candidate_name"); name != "" {
			knownNames[strings.ToLower(name)] = true
		}
	}

	mentions := cvIDMentionRe.FindAllStringSubmatch(answer, -1)
	if len(mentions) == 0 {
		return 1, nil
	}

	seen := make(map[string]bool)
	var total, verifiedCount int
	for _, m := range mentions {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		total++
		if known[id] {
			verifiedCount++
		} else {
			unverified = append(unverified, id)
		}
	}
	if total == 0 {
		return 1, nil
	}
	return float64(verifiedCount) / float64(total), unverified
}
