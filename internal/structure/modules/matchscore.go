package modules

import (
	"strconv"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// partialThresholdRatio is the fraction of a requirement's implied
// threshold a candidate must clear to count as "partial" rather than
// "missing" (§4.10: "partial (>= 70% of threshold)").
const partialThresholdRatio = 0.7

// RequirementCheck is one requirement to classify against a candidate, with
// an optional numeric threshold (e.g. years of experience) the candidate's
// Value must clear.
type RequirementCheck struct {
	Requirement string
	// Satisfied reports whether the candidate fully meets this
	// requirement (e.g. a required skill is present).
	Satisfied bool
	// Value/Threshold are set for numeric requirements (e.g. years of
	// experience); when Threshold > 0 and the requirement is not fully
	// Satisfied, Value/Threshold determines a partial match.
	Value     float64
	Threshold float64
}

// BuildMatchScore classifies each check as met/partial/missing and derives
// the overall percentage: (met + 0.5*partial) / total * 100.
func BuildMatchScore(checks []RequirementCheck) domain.MatchScoreResult {
	matches := make([]domain.RequirementMatch, 0, len(checks))
	met, partial := 0.0, 0.0

	for _, c := range checks {
		status, detail := classify(c)
		switch status {
		case domain.MatchMet:
			met++
		case domain.MatchPartial:
			partial++
		}
		matches = append(matches, domain.RequirementMatch{
			Requirement: c.Requirement,
			Status:      status,
			Detail:      detail,
		})
	}

	overall := 0.0
	if len(checks) > 0 {
		overall = (met + 0.5*partial) / float64(len(checks)) * 100
	}

	return domain.MatchScoreResult{Matches: matches, Overall: overall}
}

func classify(c RequirementCheck) (domain.MatchStatus, string) {
	if c.Satisfied {
		return domain.MatchMet, "requirement satisfied"
	}
	if c.Threshold > 0 {
		ratio := c.Value / c.Threshold
		if ratio >= partialThresholdRatio {
			return domain.MatchPartial, partialDetail(ratio)
		}
	}
	return domain.MatchMissing, "requirement not evidenced"
}

func partialDetail(ratio float64) string {
	if ratio > 1 {
		ratio = 1
	}
	var b strings.Builder
	b.WriteString("meets ")
	b.WriteString(strconv.FormatFloat(ratio*100, 'f', 0, 64))
	b.WriteString("% of the expected threshold")
	return b.String()
}
