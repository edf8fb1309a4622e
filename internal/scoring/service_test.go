package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func strongCandidate() domain.EnrichedMetadata {
	return domain.EnrichedMetadata{
		TotalExperienceYears: 9,
		Skills:               []string{"Go", "Kubernetes", "PostgreSQL"},
		Education: []domain.Education{
			{Level: "master", Field: "Computer Science"},
		},
		Certifications: []domain.Certification{{Name: "AWS SAA"}, {Name: "CKA"}},
		Languages:      []string{"english", "french"},
		Location:       "Berlin, Germany",
	}
}

func profileFor() domain.ScoringProfile {
	p := domain.ScoringProfile{
		ID:                   "backend-senior",
		Weights:              map[string]float64{CriterionSkillsMatch: 0.4, CriterionExperience: 0.3, CriterionEducation: 0.3},
		RequiredSkills:       []string{"go", "kubernetes"},
		PreferredSkills:      []string{"postgresql"},
		MinExperienceYears:   3,
		IdealExperienceYears: 8,
		RequiredEducation:    "bachelor",
		PreferredLocations:   []string{"berlin", "remote"},
	}
	p.Normalize()
	return p
}

func TestScore_StrongCandidateGetsHighOverallAndGradeA(t *testing.T) {
	svc := New()
	res := svc.Score(profileFor(), strongCandidate())

	assert.InDelta(t, 100, res.Criteria[CriterionSkillsMatch], 0.01)
	assert.Equal(t, 100.0, res.Criteria[CriterionExperience])
	assert.Equal(t, 100.0, res.Criteria[CriterionEducation])
	assert.GreaterOrEqual(t, res.Overall, 90.0)
	assert.Equal(t, "A", res.Grade)
}

func TestScore_MissingRequiredSkillsLowersSkillsMatch(t *testing.T) {
	svc := New()
	profile := profileFor()
	metadata := strongCandidate()
	metadata.Skills = []string{"Go"}

	res := svc.Score(profile, metadata)
	assert.Less(t, res.Criteria[CriterionSkillsMatch], 100.0)
}

func TestScore_UnderMinExperienceGetsPartialCredit(t *testing.T) {
	svc := New()
	profile := profileFor()
	metadata := strongCandidate()
	metadata.TotalExperienceYears = 1.5

	res := svc.Score(profile, metadata)
	assert.Greater(t, res.Criteria[CriterionExperience], 0.0)
	assert.Less(t, res.Criteria[CriterionExperience], 50.0)
}

func TestScore_NoIdealExperienceFallsBackToTenYearRamp(t *testing.T) {
	svc := New()
	profile := domain.ScoringProfile{}
	metadata := domain.EnrichedMetadata{TotalExperienceYears: 5}

	res := svc.Score(profile, metadata)
	assert.InDelta(t, 50, res.Criteria[CriterionExperience], 0.01)
}

func TestScore_EducationBelowRequiredYieldsPartialCredit(t *testing.T) {
	svc := New()
	profile := profileFor()
	profile.RequiredEducation = "phd"
	metadata := strongCandidate() // has master, one rank below phd

	res := svc.Score(profile, metadata)
	assert.Equal(t, 60.0, res.Criteria[CriterionEducation])
}

func TestScore_NoEducationDataScoresZeroWhenRequired(t *testing.T) {
	svc := New()
	profile := profileFor()
	metadata := strongCandidate()
	metadata.Education = nil

	res := svc.Score(profile, metadata)
	assert.Equal(t, 0.0, res.Criteria[CriterionEducation])
}

func TestScore_LocationOutsidePreferredListScoresPartial(t *testing.T) {
	svc := New()
	profile := profileFor()
	metadata := strongCandidate()
	metadata.Location = "Jakarta, Indonesia"

	res := svc.Score(profile, metadata)
	assert.Equal(t, 40.0, res.Criteria[CriterionLocation])
}

func TestScore_NoPreferredLocationsScoresFull(t *testing.T) {
	svc := New()
	profile := profileFor()
	profile.PreferredLocations = nil
	metadata := strongCandidate()
	metadata.Location = "Anywhere"

	res := svc.Score(profile, metadata)
	assert.Equal(t, 100.0, res.Criteria[CriterionLocation])
}

func TestScore_ExtraCriteriaFallBackToNeutralWhenAbsent(t *testing.T) {
	svc := New()
	res := svc.Score(profileFor(), strongCandidate())

	assert.Equal(t, 70.0, res.Criteria[CriterionRelevance])
	assert.Equal(t, 70.0, res.Criteria[CriterionCulturalFit])
	assert.Equal(t, 70.0, res.Criteria[CriterionCustom])
}

func TestScore_ExtraCriteriaUseProvidedValueWhenPresent(t *testing.T) {
	svc := New()
	metadata := strongCandidate()
	metadata.Extra = map[string]any{"relevance_score": 95.0}

	res := svc.Score(profileFor(), metadata)
	assert.Equal(t, 95.0, res.Criteria[CriterionRelevance])
}

func TestScore_WeakCandidateYieldsWeaknessesAndLowGrade(t *testing.T) {
	svc := New()
	profile := profileFor()
	metadata := domain.EnrichedMetadata{
		TotalExperienceYears: 0,
		Skills:               nil,
		Location:             "",
	}

	res := svc.Score(profile, metadata)
	assert.Equal(t, "F", res.Grade)
	require.NotEmpty(t, res.Weaknesses)
	assert.Contains(t, res.Weaknesses, CriterionExperience)
}

func TestScore_StrengthsAndWeaknessesCappedAtThree(t *testing.T) {
	svc := New()
	res := svc.Score(profileFor(), strongCandidate())

	assert.LessOrEqual(t, len(res.Strengths), 3)
	assert.LessOrEqual(t, len(res.Weaknesses), 3)
}

func TestScore_WeightsNormalizedEvenWhenProfileOmitsCriteria(t *testing.T) {
	svc := New()
	profile := domain.ScoringProfile{Weights: map[string]float64{CriterionSkillsMatch: 5}}
	res := svc.Score(profile, strongCandidate())

	assert.GreaterOrEqual(t, res.Overall, 0.0)
	assert.LessOrEqual(t, res.Overall, 100.0)
}
