// Package modules implements the reusable structure-building blocks shared
// across the C12 structures: risk table, match-score, ranking table, team
// matrix/synergy/cards, and gap/red-flag/timeline extraction. Each module
// is a pure function over domain.EnrichedMetadata / domain.SearchResult —
// no I/O, no LLM calls (§4.10).
package modules

import (
	"fmt"
	"math"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const (
	riskLevelModerateFloor = 35.0
	riskLevelHighFloor     = 65.0
)

// BuildRiskTable scores the five risk factors from §4.10 and classifies
// the overall level.
func BuildRiskTable(metadata domain.EnrichedMetadata) domain.RiskTable {
	factors := []domain.RiskFactor{
		redFlagFactor(metadata),
		jobHoppingFactor(metadata),
		employmentGapFactor(metadata),
		stabilityFactor(metadata),
		experienceLevelFactor(metadata),
	}

	sum := 0.0
	for _, f := range factors {
		sum += f.Score
	}
	overall := sum / float64(len(factors))
	level := classifyRisk(overall)

	return domain.RiskTable{
		Factors:      factors,
		OverallScore: overall,
		OverallLevel: level,
		Summary:      riskSummary(level, factors),
	}
}

func classifyRisk(score float64) domain.RiskLevel {
	switch {
	case score >= riskLevelHighFloor:
		return domain.RiskHigh
	case score >= riskLevelModerateFloor:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}

func redFlagFactor(metadata domain.EnrichedMetadata) domain.RiskFactor {
	flags := DetectRedFlags(metadata)
	score := math.Min(100, float64(len(flags))*25)
	detail := fmt.Sprintf("%d red flag(s) detected", len(flags))
	return domain.RiskFactor{Name: "red_flags", Score: score, Detail: detail}
}

func jobHoppingFactor(metadata domain.EnrichedMetadata) domain.RiskFactor {
	score := clamp(metadata.JobHoppingScore*100, 0, 100)
	return domain.RiskFactor{
		Name:   "job_hopping",
		Score:  score,
		Detail: fmt.Sprintf("hopping score %.2f", metadata.JobHoppingScore),
	}
}

func employmentGapFactor(metadata domain.EnrichedMetadata) domain.RiskFactor {
	score := clamp(float64(metadata.EmploymentGapCount)*20, 0, 100)
	return domain.RiskFactor{
		Name:   "employment_gaps",
		Score:  score,
		Detail: fmt.Sprintf("%d gap(s) detected", metadata.EmploymentGapCount),
	}
}

func stabilityFactor(metadata domain.EnrichedMetadata) domain.RiskFactor {
	// Stability risk is the inverse of tenure: short average tenure is
	// riskier, falling linearly from full risk at 0 years to none at 4 years
	// or more.
	score := clamp(100-25*metadata.AvgTenureYears, 0, 100)
	return domain.RiskFactor{
		Name:   "stability",
		Score:  score,
		Detail: fmt.Sprintf("average tenure %.1fy", metadata.AvgTenureYears),
	}
}

func experienceLevelFactor(metadata domain.EnrichedMetadata) domain.RiskFactor {
	// Very junior candidates carry more execution risk on senior asks;
	// risk falls linearly to 0 at 5 years.
	score := clamp(100-20*metadata.TotalExperienceYears, 0, 100)
	return domain.RiskFactor{
		Name:   "experience_level",
		Score:  score,
		Detail: fmt.Sprintf("%.1f years total experience", metadata.TotalExperienceYears),
	}
}

func riskSummary(level domain.RiskLevel, factors []domain.RiskFactor) string {
	worst := factors[0]
	for _, f := range factors[1:] {
		if f.Score > worst.Score {
			worst = f
		}
	}
	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf("High overall risk, driven primarily by %s.", worst.Name)
	case domain.RiskModerate:
		return fmt.Sprintf("Moderate overall risk; watch %s.", worst.Name)
	default:
		return "Low overall risk across all factors."
	}
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
