// Package scoring implements the weighted 0-100 candidate scoring service
// (C14): per-criterion raw scores derived from a candidate's enriched
// metadata, combined via a profile's normalized weights into one overall
// score, letter grade, and top strengths/weaknesses.
package scoring

import (
	"math"
	"sort"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Criterion names, fixed per §4.12.
const (
	CriterionSkillsMatch    = "skills_match"
	CriterionExperience     = "experience"
	CriterionEducation      = "education"
	CriterionRelevance      = "relevance"
	CriterionCertifications = "certifications"
	CriterionLanguages      = "languages"
	CriterionLocation       = "location"
	CriterionCulturalFit    = "cultural_fit"
	CriterionCustom         = "custom"
)

var allCriteria = []string{
	CriterionSkillsMatch,
	CriterionExperience,
	CriterionEducation,
	CriterionRelevance,
	CriterionCertifications,
	CriterionLanguages,
	CriterionLocation,
	CriterionCulturalFit,
	CriterionCustom,
}

// defaultWeights is used for any criterion missing from the profile's
// Weights map, so a partially-specified profile still scores every
// criterion rather than silently dropping it from the overall.
var defaultWeights = map[string]float64{
	CriterionSkillsMatch:    0.30,
	CriterionExperience:     0.20,
	CriterionEducation:      0.10,
	CriterionRelevance:      0.15,
	CriterionCertifications: 0.05,
	CriterionLanguages:      0.05,
	CriterionLocation:       0.05,
	CriterionCulturalFit:    0.05,
	CriterionCustom:         0.05,
}

// Letter-grade thresholds.
const (
	gradeA = 90.0
	gradeB = 80.0
	gradeC = 70.0
	gradeD = 60.0

	strengthThreshold = 80.0
	weaknessThreshold = 60.0
	topN              = 3
)

// educationRank orders education levels for the "meets required level"
// comparison. Unrecognized levels rank below every known level.
var educationRank = map[string]int{
	"highschool": 1,
	"associate":  2,
	"bachelor":   3,
	"master":     4,
	"phd":        5,
	"doctorate":  5,
}

// Result is the outcome of scoring one candidate against one profile.
type Result struct {
	ProfileID  string             `json:"profile_id"`
	Overall    float64            `json:"overall"`
	Grade      string             `json:"grade"`
	Criteria   map[string]float64 `json:"criteria"` // criterion -> raw [0,100]
	Strengths  []string           `json:"strengths"`  // criteria with raw >= 80, best first, top 3
	Weaknesses []string           `json:"weaknesses"` // criteria with raw < 60, worst first, top 3
}

// Service computes candidate scores. It holds no state; all inputs are
// passed per call so the same Service is safe for concurrent use across
// requests (§5).
type Service struct{}

// New returns a ready-to-use Service.
func New() *Service {
	return &Service{}
}

// Score evaluates metadata against profile and returns the weighted overall
// score, letter grade, and per-criterion breakdown. The profile's Weights
// are normalized locally; the caller's profile is never mutated.
func (s *Service) Score(profile domain.ScoringProfile, metadata domain.EnrichedMetadata) Result {
	weights := normalizedWeights(profile.Weights)

	raw := map[string]float64{
		CriterionSkillsMatch:    scoreSkillsMatch(profile, metadata),
		CriterionExperience:     scoreExperience(profile, metadata),
		CriterionEducation:      scoreEducation(profile, metadata),
		CriterionRelevance:      scoreFromExtra(metadata, "relevance_score"),
		CriterionCertifications: scoreCertifications(metadata),
		CriterionLanguages:      scoreLanguages(metadata),
		CriterionLocation:       scoreLocation(profile, metadata),
		CriterionCulturalFit:    scoreFromExtra(metadata, "cultural_fit_score"),
		CriterionCustom:         scoreFromExtra(metadata, "custom_score"),
	}

	var overall float64
	for _, c := range allCriteria {
		overall += raw[c] * weights[c]
	}
	overall = clamp(overall, 0, 100)

	return Result{
		ProfileID:  profile.ID,
		Overall:    overall,
		Grade:      letterGrade(overall),
		Criteria:   raw,
		Strengths:  topCriteria(raw, strengthThreshold, true),
		Weaknesses: topCriteria(raw, weaknessThreshold, false),
	}
}

// normalizedWeights fills in any criterion missing from profile weights
// with its default, then rescales the combined map to sum to 1.0.
func normalizedWeights(profileWeights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(allCriteria))
	for _, c := range allCriteria {
		if w, ok := profileWeights[c]; ok {
			out[c] = w
		} else {
			out[c] = defaultWeights[c]
		}
	}
	sum := 0.0
	for _, w := range out {
		sum += w
	}
	if sum <= 0 {
		return defaultWeights
	}
	for c, w := range out {
		out[c] = w / sum
	}
	return out
}

func scoreSkillsMatch(profile domain.ScoringProfile, metadata domain.EnrichedMetadata) float64 {
	if len(profile.RequiredSkills) == 0 && len(profile.PreferredSkills) == 0 {
		return 100
	}
	have := make(map[string]bool, len(metadata.Skills))
	for _, sk := range metadata.Skills {
		have[normalizeSkill(sk)] = true
	}

	requiredScore := 100.0
	if len(profile.RequiredSkills) > 0 {
		matched := 0
		for _, sk := range profile.RequiredSkills {
			if have[normalizeSkill(sk)] {
				matched++
			}
		}
		requiredScore = 100 * float64(matched) / float64(len(profile.RequiredSkills))
	}

	preferredScore := 100.0
	if len(profile.PreferredSkills) > 0 {
		matched := 0
		for _, sk := range profile.PreferredSkills {
			if have[normalizeSkill(sk)] {
				matched++
			}
		}
		preferredScore = 100 * float64(matched) / float64(len(profile.PreferredSkills))
	}

	switch {
	case len(profile.RequiredSkills) > 0 && len(profile.PreferredSkills) > 0:
		return 0.7*requiredScore + 0.3*preferredScore
	case len(profile.RequiredSkills) > 0:
		return requiredScore
	default:
		return preferredScore
	}
}

func normalizeSkill(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// scoreExperience ramps 0->50 between 0 and MinExperienceYears (partial
// credit for under-qualified candidates), 50->100 between Min and Ideal,
// and caps at 100 beyond Ideal. Falls back to a 10-year-to-100 ramp when
// the profile leaves both thresholds unset.
func scoreExperience(profile domain.ScoringProfile, metadata domain.EnrichedMetadata) float64 {
	years := metadata.TotalExperienceYears
	min := profile.MinExperienceYears
	ideal := profile.IdealExperienceYears

	if ideal <= 0 || ideal <= min {
		return clamp(years/10*100, 0, 100)
	}
	switch {
	case years >= ideal:
		return 100
	case years >= min:
		if ideal == min {
			return 100
		}
		return clamp(50+50*(years-min)/(ideal-min), 0, 100)
	case min > 0:
		return clamp(50*years/min, 0, 50)
	default:
		return clamp(years/ideal*100, 0, 100)
	}
}

func scoreEducation(profile domain.ScoringProfile, metadata domain.EnrichedMetadata) float64 {
	if profile.RequiredEducation == "" {
		return 100
	}
	requiredRank, ok := educationRank[normalizeSkill(profile.RequiredEducation)]
	if !ok {
		return 100
	}
	best := 0
	for _, ed := range metadata.Education {
		if r, ok := educationRank[normalizeSkill(ed.Level)]; ok && r > best {
			best = r
		}
	}
	switch {
	case best == 0:
		return 0
	case best >= requiredRank:
		return 100
	case best == requiredRank-1:
		return 60
	default:
		return 20
	}
}

func scoreCertifications(metadata domain.EnrichedMetadata) float64 {
	n := len(metadata.Certifications)
	return clamp(float64(n)*25, 0, 100)
}

func scoreLanguages(metadata domain.EnrichedMetadata) float64 {
	n := len(metadata.Languages)
	return clamp(float64(n)*33, 0, 100)
}

func scoreLocation(profile domain.ScoringProfile, metadata domain.EnrichedMetadata) float64 {
	if len(profile.PreferredLocations) == 0 {
		return 100
	}
	if metadata.Location == "" {
		return 40
	}
	loc := normalizeSkill(metadata.Location)
	for _, pref := range profile.PreferredLocations {
		if containsFold(loc, normalizeSkill(pref)) {
			return 100
		}
	}
	return 40
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// scoreFromExtra reads a neutral, not-yet-modeled criterion from the CV's
// open metadata map (Design Note §9); absent or out-of-range values fall
// back to a neutral 70 rather than penalizing candidates for data no
// extractor populated.
func scoreFromExtra(metadata domain.EnrichedMetadata, key string) float64 {
	if metadata.Extra == nil {
		return 70
	}
	switch v := metadata.Extra[key].(type) {
	case float64:
		return clamp(v, 0, 100)
	case int:
		return clamp(float64(v), 0, 100)
	default:
		return 70
	}
}

func letterGrade(overall float64) string {
	switch {
	case overall >= gradeA:
		return "A"
	case overall >= gradeB:
		return "B"
	case overall >= gradeC:
		return "C"
	case overall >= gradeD:
		return "D"
	default:
		return "F"
	}
}

// topCriteria returns up to topN criterion names passing the threshold
// (>= for strengths, < for weaknesses), ordered best-first for strengths
// and worst-first for weaknesses, with criterion name as a stable tiebreak.
func topCriteria(raw map[string]float64, threshold float64, strengths bool) []string {
	var matched []string
	for _, c := range allCriteria {
		v := raw[c]
		if strengths && v >= threshold {
			matched = append(matched, c)
		}
		if !strengths && v < threshold {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		vi, vj := raw[matched[i]], raw[matched[j]]
		if vi != vj {
			if strengths {
				return vi > vj
			}
			return vi < vj
		}
		return matched[i] < matched[j]
	})
	if len(matched) > topN {
		matched = matched[:topN]
	}
	return matched
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
