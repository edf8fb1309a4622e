package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// RejectionMessage is a canned reply for queries that are not CV-related.
// The pipeline does not use it: the guardrail's own rejection text is what
// a rejected query receives.
const RejectionMessage = "I can only help with questions about the indexed CVs/candidates. Please ask about a candidate's experience, skills, education, or fit for a role."

const understandingSystemPrompt = `You classify a user's question about a pool of indexed résumés (CVs).

Respond with ONLY a JSON object of this shape, no prose, no code fences:
{
  "is_cv_related": true|false,
  "type": "single_candidate"|"ranking"|"comparison"|"search"|"job_match"|"team_build"|"risk_assessment"|"verification"|"summary"|"red_flags"|"adaptive",
  "understood": "a restatement of the question in your own words",
  "reformulated_prompt": "the question rewritten to be self-contained and unambiguous",
  "requirements": ["explicit requirement 1", "explicit requirement 2"]
}

is_cv_related is false only for questions that have nothing to do with candidates, résumés, hiring, or the indexed corpus. requirements lists any explicit skill/experience/certification constraints named in the question; an empty array is fine when there are none.`

type understandingLLMResponse struct {
	IsCVRelated        bool     `json:"is_cv_related"`
	Type               string   `json:"type"`
	Understood         string   `json:"understood"`
	ReformulatedPrompt string   `json:"reformulated_prompt"`
	Requirements       []string `json:"requirements"`
}

var validQueryTypes = map[string]domain.QueryType{
	string(domain.QueryTypeSingleCandidate): domain.QueryTypeSingleCandidate,
	string(domain.QueryTypeRanking):         domain.QueryTypeRanking,
	string(domain.QueryTypeComparison):      domain.QueryTypeComparison,
	string(domain.QueryTypeSearch):          domain.QueryTypeSearch,
	string(domain.QueryTypeJobMatch):        domain.QueryTypeJobMatch,
	string(domain.QueryTypeTeamBuild):       domain.QueryTypeTeamBuild,
	string(domain.QueryTypeRiskAssessment):  domain.QueryTypeRiskAssessment,
	string(domain.QueryTypeVerification):    domain.QueryTypeVerification,
	string(domain.QueryTypeSummary):         domain.QueryTypeSummary,
	string(domain.QueryTypeRedFlags):        domain.QueryTypeRedFlags,
	string(domain.QueryTypeAdaptive):        domain.QueryTypeAdaptive,
}

// QueryUnderstander calls a fast classification LLM to produce
// domain.QueryUnderstanding (C4).
type QueryUnderstander struct {
	llm domain.LLM
}

// NewQueryUnderstander builds a QueryUnderstander bound to the
// classification-stage LLM.
func NewQueryUnderstander(llm domain.LLM) *QueryUnderstander {
	return &QueryUnderstander{llm: llm}
}

// Understand classifies query and returns a QueryUnderstanding. On an LLM or
// parse error, it degrades to a conservative fallback that treats the query
// as CV-related search so the pipeline can still attempt retrieval rather
// than fail outright.
func (u *QueryUnderstander) Understand(ctx domain.Context, query string) (domain.QueryUnderstanding, error) {
	res, err := u.llm.Generate(ctx, understandingSystemPrompt, query)
	if err != nil {
		return fallbackUnderstanding(query), fmt.Errorf("op=usecase.Understand: %w", err)
	}

	raw := strings.TrimSpace(res.Text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed understandingLLMResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return fallbackUnderstanding(query), fmt.Errorf("op=usecase.Understand: parse response: %w", err)
	}

	qt, ok := validQueryTypes[parsed.Type]
	if !ok {
		qt = domain.QueryTypeSearch
	}

	reformulated := parsed.ReformulatedPrompt
	if reformulated == "" {
		reformulated = query
	}

	return domain.QueryUnderstanding{
		Original:           query,
		Understood:         parsed.Understood,
		Type:               qt,
		Requirements:       parsed.Requirements,
		ReformulatedPrompt: reformulated,
		IsCVRelated:        parsed.IsCVRelated,
	}, nil
}

func fallbackUnderstanding(query string) domain.QueryUnderstanding {
	return domain.QueryUnderstanding{
		Original:           query,
		Understood:         query,
		Type:               domain.QueryTypeSearch,
		ReformulatedPrompt: query,
		IsCVRelated:        true,
	}
}
