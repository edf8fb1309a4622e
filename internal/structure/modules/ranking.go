package modules

import (
	"math"
	"sort"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Ranking criterion names (§4.10).
const (
	RankCriterionExperience  = "experience"
	RankCriterionSkills      = "skills"
	RankCriterionStability   = "stability"
	RankCriterionSeniority   = "seniority"
	RankCriterionTenure      = "tenure"
	RankCriterionTrajectory  = "career_trajectory"
)

// defaultRankingWeights weights each criterion equally unless the caller
// supplies its own (e.g. from a job-specific ScoringProfile).
var defaultRankingWeights = map[string]float64{
	RankCriterionExperience: 1.0 / 6,
	RankCriterionSkills:     1.0 / 6,
	RankCriterionStability:  1.0 / 6,
	RankCriterionSeniority:  1.0 / 6,
	RankCriterionTenure:     1.0 / 6,
	RankCriterionTrajectory: 1.0 / 6,
}

var seniorityScores = map[domain.Seniority]float64{
	domain.SeniorityJunior:    20,
	domain.SeniorityEntry:     30,
	domain.SeniorityMid:       55,
	domain.SenioritySenior:    80,
	domain.SeniorityPrincipal: 100,
	domain.SeniorityUnknown:   40,
}

// RankingCandidate is one candidate to score in a ranking table.
type RankingCandidate struct {
	CVID          string
	CandidateName string
	Metadata      domain.EnrichedMetadata
}

// BuildRankingTable scores every candidate on the six deterministic
// criteria from §4.10 and sorts the resulting rows by overall descending.
// weights may be nil to use equal default weights; weights need not sum
// to 1 — they are normalized locally.
func BuildRankingTable(candidates []RankingCandidate, weights map[string]float64) domain.RankingTable {
	w := normalizeRankWeights(weights)

	rows := make([]domain.RankingRow, 0, len(candidates))
	for _, c := range candidates {
		criteria := []domain.RankingCriterionScore{
			{Criterion: RankCriterionExperience, Score: experienceScore(c.Metadata)},
			{Criterion: RankCriterionSkills, Score: skillsScore(c.Metadata)},
			{Criterion: RankCriterionStability, Score: stabilityScore(c.Metadata)},
			{Criterion: RankCriterionSeniority, Score: seniorityScore(c.Metadata)},
			{Criterion: RankCriterionTenure, Score: tenureScore(c.Metadata)},
			{Criterion: RankCriterionTrajectory, Score: trajectoryScore(c.Metadata)},
		}
		overall := 0.0
		for _, cr := range criteria {
			overall += cr.Score * w[cr.Criterion]
		}
		rows = append(rows, domain.RankingRow{
			CVID:          c.CVID,
			CandidateName: c.CandidateName,
			Criteria:      criteria,
			Overall:       overall,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Overall > rows[j].Overall })
	return domain.RankingTable{Rows: rows}
}

func normalizeRankWeights(weights map[string]float64) map[string]float64 {
	if len(weights) == 0 {
		return defaultRankingWeights
	}
	out := make(map[string]float64, len(defaultRankingWeights))
	sum := 0.0
	for k := range defaultRankingWeights {
		v, ok := weights[k]
		if !ok {
			v = defaultRankingWeights[k]
		}
		out[k] = v
		sum += v
	}
	if sum <= 0 {
		return defaultRankingWeights
	}
	for k, v := range out {
		out[k] = v / sum
	}
	return out
}

// experienceScore ramps linearly to 100 at 10 years (§4.10).
func experienceScore(m domain.EnrichedMetadata) float64 {
	return clamp(m.TotalExperienceYears/10*100, 0, 100)
}

// skillsScore ramps linearly to 100 at 8 skills (§4.10).
func skillsScore(m domain.EnrichedMetadata) float64 {
	return clamp(float64(len(m.Skills))/8*100, 0, 100)
}

// stabilityScore is 100 - 100*hopping (§4.10).
func stabilityScore(m domain.EnrichedMetadata) float64 {
	return clamp(100-100*m.JobHoppingScore, 0, 100)
}

func seniorityScore(m domain.EnrichedMetadata) float64 {
	if s, ok := seniorityScores[m.Seniority]; ok {
		return s
	}
	return seniorityScores[domain.SeniorityUnknown]
}

// tenureScore ramps linearly to 100 at 4 years average tenure (§4.10).
func tenureScore(m domain.EnrichedMetadata) float64 {
	return clamp(m.AvgTenureYears/4*100, 0, 100)
}

// trajectoryScore is a bell curve centered on 0.4 positions/year (§4.10):
// candidates who change roles at roughly that pace score highest: too
// static or too frequent a change both score lower.
func trajectoryScore(m domain.EnrichedMetadata) float64 {
	if m.TotalExperienceYears <= 0 || m.PositionCount == 0 {
		return 0
	}
	rate := float64(m.PositionCount) / m.TotalExperienceYears
	const (
		center = 0.4
		sigma  = 0.25
	)
	diff := rate - center
	score := 100 * math.Exp(-(diff*diff)/(2*sigma*sigma))
	return clamp(score, 0, 100)
}
