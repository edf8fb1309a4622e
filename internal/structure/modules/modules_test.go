package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestBuildRiskTable_HighHoppingAndGapsClassifiesHigh(t *testing.T) {
	metadata := domain.EnrichedMetadata{
		JobHoppingScore:    0.9,
		EmploymentGapCount: 3,
		AvgTenureYears:     0.5,
		TotalExperienceYears: 1,
	}
	table := BuildRiskTable(metadata)
	assert.Equal(t, domain.RiskHigh, table.OverallLevel)
	assert.Len(t, table.Factors, 5)
}

func TestBuildRiskTable_StableCandidateClassifiesLow(t *testing.T) {
	metadata := domain.EnrichedMetadata{
		JobHoppingScore:      0.05,
		EmploymentGapCount:   0,
		AvgTenureYears:       5,
		TotalExperienceYears: 10,
	}
	table := BuildRiskTable(metadata)
	assert.Equal(t, domain.RiskLow, table.OverallLevel)
}

func TestBuildMatchScore_ClassifiesMetPartialMissing(t *testing.T) {
	checks := []RequirementCheck{
		{Requirement: "go", Satisfied: true},
		{Requirement: "5y experience", Value: 4, Threshold: 5},
		{Requirement: "kubernetes", Satisfied: false},
	}
	result := BuildMatchScore(checks)
	assert.Equal(t, domain.MatchMet, result.Matches[0].Status)
	assert.Equal(t, domain.MatchPartial, result.Matches[1].Status)
	assert.Equal(t, domain.MatchMissing, result.Matches[2].Status)
	assert.InDelta(t, (1+0.5)/3*100, result.Overall, 0.01)
}

func TestBuildRankingTable_SortsByOverallDescending(t *testing.T) {
	candidates := []RankingCandidate{
		{CVID: "cv_1", CandidateName: "Weak", Metadata: domain.EnrichedMetadata{TotalExperienceYears: 1}},
		{CVID: "cv_2", CandidateName: "Strong", Metadata: domain.EnrichedMetadata{
			TotalExperienceYears: 10, Skills: make([]string, 8), AvgTenureYears: 4,
			Seniority: domain.SeniorityPrincipal, PositionCount: 4,
		}},
	}
	table := BuildRankingTable(candidates, nil)
	assert.Equal(t, "Strong", table.Rows[0].CandidateName)
	assert.Greater(t, table.Rows[0].Overall, table.Rows[1].Overall)
}

func TestBuildRankingTable_TrajectoryScorePeaksNearPointFourPerYear(t *testing.T) {
	onPace := RankingCandidate{Metadata: domain.EnrichedMetadata{TotalExperienceYears: 10, PositionCount: 4}}
	offPace := RankingCandidate{Metadata: domain.EnrichedMetadata{TotalExperienceYears: 10, PositionCount: 10}}
	table := BuildRankingTable([]RankingCandidate{onPace, offPace}, nil)

	trajectoryScoreFor := func(row domain.RankingRow) float64 {
		for _, c := range row.Criteria {
			if c.Criterion == RankCriterionTrajectory {
				return c.Score
			}
		}
		return -1
	}
	assert.Greater(t, trajectoryScoreFor(table.Rows[0]), trajectoryScoreFor(table.Rows[1]))
}

func TestBuildSkillMatrix_RanksByCoverageDescending(t *testing.T) {
	team := []TeamMember{
		{CandidateName: "A", Metadata: domain.EnrichedMetadata{Skills: []string{"go", "python"}}},
		{CandidateName: "B", Metadata: domain.EnrichedMetadata{Skills: []string{"go"}}},
	}
	matrix := BuildSkillMatrix(team)
	assert.Equal(t, "go", matrix[0].Skill)
	assert.Equal(t, 1.0, matrix[0].CoverageRate)
}

func TestBuildSynergy_FlagsSinglePointOfFailure(t *testing.T) {
	team := []TeamMember{
		{CandidateName: "A", Metadata: domain.EnrichedMetadata{Skills: []string{"go"}}},
		{CandidateName: "B", Metadata: domain.EnrichedMetadata{Skills: []string{"python"}}},
		{CandidateName: "C", Metadata: domain.EnrichedMetadata{Skills: []string{"rust"}}},
	}
	matrix := BuildSkillMatrix(team)
	notes := BuildSynergy(team, matrix)
	found := false
	for _, n := range notes {
		if n.Kind == "gap" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDetectRedFlags_FlagsHighHoppingAndGaps(t *testing.T) {
	metadata := domain.EnrichedMetadata{JobHoppingScore: 0.7, EmploymentGapCount: 2}
	flags := DetectRedFlags(metadata)
	assert.Len(t, flags, 2)
}

func TestBuildGapAnalysis_FindsMissingRequiredSkills(t *testing.T) {
	metadata := domain.EnrichedMetadata{Skills: []string{"Go"}}
	gaps := BuildGapAnalysis(metadata, []string{"go", "kubernetes"})
	assert.Len(t, gaps, 1)
	assert.Equal(t, "kubernetes", gaps[0].Requirement)
}

func TestBuildTimeline_OrdersByYearUndatedLast(t *testing.T) {
	metadata := domain.EnrichedMetadata{
		Positions: []domain.Position{
			{Title: "b", StartYear: 2020},
			{Title: "undated", StartYear: 0},
			{Title: "a", StartYear: 2015},
		},
	}
	events := BuildTimeline(metadata)
	assert.Equal(t, "a", events[0].Title)
	assert.Equal(t, "b", events[1].Title)
	assert.Equal(t, "undated", events[2].Title)
}
