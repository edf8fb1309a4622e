package chunker

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// aggregate computes EnrichedMetadata from the parsed positions, raw text,
// and skill list, per §4.1 steps 4-7. It is identical across every chunk
// emitted for one CV (§3.1 invariant), so callers copy the returned value
// onto each chunk rather than recomputing per chunk.
func (c *Chunker) aggregate(positions []domain.Position, rawText string, skills []string) domain.EnrichedMetadata {
	now := time.Now()
	m := domain.EnrichedMetadata{
		PositionCount: len(positions),
		Positions:     positions,
		Skills:        skills,
		Extra:         map[string]any{},
	}

	m.TotalExperienceYears, m.EstimatedTotal = totalExperience(positions, now)
	m.AvgTenureYears = avgTenure(positions)
	m.JobHoppingScore = jobHoppingScore(len(positions), m.TotalExperienceYears, m.AvgTenureYears)
	m.EmploymentGapCount = employmentGapCount(positions)

	if len(positions) > 0 {
		sorted := sortedByRecency(positions)
		m.CurrentRole = sorted[0].Title
		m.CurrentCompany = sorted[0].Company
	}
	m.Seniority = inferSeniority(m.TotalExperienceYears, len(positions), m.CurrentRole)

	m.IsFAANG = hasFAANGEmployer(positions)
	m.Languages = extractLanguages(rawText)
	m.LanguageFlags = toLowerFlagSet(m.Languages)
	m.Education = extractEducation(rawText, c.taxonomy)
	m.Certifications = extractCertifications(rawText)
	m.CertificationFlags = certificationFlags(m.Certifications)
	m.Location = extractLocation(rawText)
	m.LinkedInURL = firstMatch(linkedInURLRe, rawText)
	m.GitHubURL = firstMatch(gitHubURLRe, rawText)
	m.PortfolioURL = portfolioURL(rawText)
	m.Hobbies = extractHobbies(rawText)

	return m
}

// totalExperience applies the 4-tier fallback from §4.1 step 4:
// 1. max(end) - min(start) across dated positions, when at least two are dated.
// 2. sum of each position's own duration, when every position is dated.
// 3. 2.5 years per undated position, when no dates were recovered at all.
// 4. 1.5 years per position as a last resort, capped at 40 years.
func totalExperience(positions []domain.Position, now time.Time) (float64, bool) {
	if len(positions) == 0 {
		return 0, false
	}

	var minStart, maxEnd int
	dated := 0
	sumDurations := 0.0
	for _, p := range positions {
		if p.StartYear == 0 {
			continue
		}
		dated++
		end := p.EndYear
		if p.IsCurrent || end == 0 {
			end = now.Year()
		}
		if minStart == 0 || p.StartYear < minStart {
			minStart = p.StartYear
		}
		if end > maxEnd {
			maxEnd = end
		}
		sumDurations += p.DurationYrs
	}

	if dated >= 2 && maxEnd > minStart {
		return float64(maxEnd - minStart), false
	}
	if dated == len(positions) && sumDurations > 0 {
		return sumDurations, false
	}
	if dated == 0 {
		return cap40(2.5 * float64(len(positions))), true
	}
	return cap40(1.5 * float64(len(positions))), true
}

func cap40(years float64) float64 {
	if years > 40 {
		return 40
	}
	return years
}

func avgTenure(positions []domain.Position) float64 {
	if len(positions) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range positions {
		sum += p.DurationYrs
	}
	return sum / float64(len(positions))
}

// jobHoppingScore is min(1, (n_positions-1)/total_years), the base formula
// (§4.1 step 5), with a piecewise tenure-banded floor: an average tenure at
// or below 0.5 years always scores 1 and one at or above 3 years always
// scores 0, regardless of what the raw ratio says (Open Question decision,
// DESIGN.md — the raw ratio alone misbehaves for very short or very long
// careers with few positions).
func jobHoppingScore(positionCount int, totalYears, avgTenureYears float64) float64 {
	if positionCount < 2 {
		return 0
	}
	const highTenure, lowTenure = 3.0, 0.5
	if avgTenureYears <= lowTenure {
		return 1
	}
	if avgTenureYears >= highTenure {
		return 0
	}
	if totalYears <= 0 {
		return 0
	}
	ratio := float64(positionCount-1) / totalYears
	if ratio > 1 {
		return 1
	}
	return ratio
}

// employmentGapCount counts year-gaps of 1+ years between the end of one
// position and the start of the next-most-recent one, sorted chronologically.
func employmentGapCount(positions []domain.Position) int {
	dated := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if p.StartYear != 0 {
			dated = append(dated, p)
		}
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].StartYear < dated[j].StartYear })

	gaps := 0
	for i := 1; i < len(dated); i++ {
		prevEnd := dated[i-1].EndYear
		if dated[i-1].IsCurrent || prevEnd == 0 {
			continue // current/undated position, no gap after it
		}
		if dated[i].StartYear-prevEnd >= 1 {
			gaps++
		}
	}
	return gaps
}

// seniorityTitleKeywords maps current-role title tokens to a seniority band,
// checked before falling back to the years/position-count bands below.
// Principal/lead-tier tokens both resolve to SeniorityPrincipal since the
// domain model doesn't carry a separate "lead" band between senior and
// principal.
var seniorityTitleKeywords = []struct {
	keywords []string
	level    domain.Seniority
}{
	{[]string{"principal", "staff", "distinguished", "director"}, domain.SeniorityPrincipal},
	{[]string{"lead", "head", "manager", "architect"}, domain.SeniorityPrincipal},
	{[]string{"senior", "sr."}, domain.SenioritySenior},
	{[]string{"junior", "jr.", "entry", "trainee", "intern"}, domain.SeniorityJunior},
}

// inferSeniority checks the current-role title for explicit seniority tokens
// first, then falls back to banding total experience per §4.1 step 7: junior
// <1y, entry <4y, mid <8y, senior <12y, principal >=12y.
func inferSeniority(totalYears float64, positionCount int, currentRole string) domain.Seniority {
	if positionCount == 0 {
		return domain.SeniorityUnknown
	}

	role := strings.ToLower(currentRole)
	for _, band := range seniorityTitleKeywords {
		for _, kw := range band.keywords {
			if strings.Contains(role, kw) {
				return band.level
			}
		}
	}

	switch {
	case totalYears < 1:
		return domain.SeniorityJunior
	case totalYears < 4:
		return domain.SeniorityEntry
	case totalYears < 8:
		return domain.SeniorityMid
	case totalYears < 12:
		return domain.SenioritySenior
	default:
		return domain.SeniorityPrincipal
	}
}

func sortedByRecency(positions []domain.Position) []domain.Position {
	out := make([]domain.Position, len(positions))
	copy(out, positions)
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCurrent != out[j].IsCurrent {
			return out[i].IsCurrent
		}
		return out[i].EndYear > out[j].EndYear
	})
	return out
}

var faangEmployers = map[string]bool{
	"meta": true, "facebook": true, "amazon": true, "apple": true,
	"netflix": true, "google": true, "alphabet": true, "microsoft": true,
}

func hasFAANGEmployer(positions []domain.Position) bool {
	for _, p := range positions {
		if faangEmployers[strings.ToLower(strings.TrimSpace(p.Company))] {
			return true
		}
	}
	return false
}

var knownLanguages = []string{
	"english", "french", "spanish", "german", "mandarin", "chinese",
	"japanese", "portuguese", "italian", "arabic", "russian", "korean",
	"dutch", "hindi",
}

func extractLanguages(rawText string) []string {
	lower := strings.ToLower(rawText)
	var found []string
	for _, lang := range knownLanguages {
		if strings.Contains(lower, lang) {
			found = append(found, lang)
		}
	}
	return found
}

func toLowerFlagSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = true
	}
	return out
}

var degreeRe = regexp.MustCompile(`(?i)\b(Ph\.?D|Master(?:'s)?|Bachelor(?:'s)?|B\.?Sc|M\.?Sc|MBA|Diploma)\b[^\n]{0,80}`)

func extractEducation(rawText string, tax *Taxonomy) []domain.Education {
	var out []domain.Education
	for _, line := range strings.Split(rawText, "\n") {
		if degreeRe.MatchString(line) {
			out = append(out, domain.Education{
				Level: strings.TrimSpace(degreeRe.FindString(line)),
				Field: strings.TrimSpace(line),
			})
		}
	}
	return out
}

var certificationRe = regexp.MustCompile(`(?i)\b(AWS|Azure|GCP|PMP|CISSP|Scrum Master|CKA|CKAD)\b[^\n]{0,60}`)

func extractCertifications(rawText string) []domain.Certification {
	var out []domain.Certification
	for _, line := range strings.Split(rawText, "\n") {
		if certificationRe.MatchString(line) {
			out = append(out, domain.Certification{Name: strings.TrimSpace(certificationRe.FindString(line))})
		}
	}
	return out
}

func certificationFlags(certs []domain.Certification) map[string]bool {
	out := make(map[string]bool, len(certs))
	for _, c := range certs {
		out[strings.ToLower(strings.Fields(c.Name)[0])] = true
	}
	return out
}

var locationRe = regexp.MustCompile(`(?im)^(?:location|address)\s*:?\s*(.+)$`)

func extractLocation(rawText string) string {
	if m := locationRe.FindStringSubmatch(rawText); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var (
	linkedInURLRe  = regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/\S+`)
	gitHubURLRe    = regexp.MustCompile(`(?i)https?://(?:www\.)?github\.com/\S+`)
	portfolioURLRe = regexp.MustCompile(`(?i)https?://\S+\.(?:dev|me|io|com|portfolio)\S*`)
)

func firstMatch(re *regexp.Regexp, text string) string {
	return strings.TrimRight(re.FindString(text), ".,;)")
}

// portfolioURL returns the first portfolio-style URL in text that is not a
// LinkedIn or GitHub link.
func portfolioURL(text string) string {
	for _, u := range portfolioURLRe.FindAllString(text, -1) {
		lower := strings.ToLower(u)
		if !strings.Contains(lower, "linkedin.com") && !strings.Contains(lower, "github.com") {
			return strings.TrimRight(u, ".,;)")
		}
	}
	return ""
}

var hobbySectionRe = regexp.MustCompile(`(?is)(?:hobbies|interests)\s*:?\s*\n?(.{0,300})`)

func extractHobbies(rawText string) []string {
	m := hobbySectionRe.FindStringSubmatch(rawText)
	if m == nil {
		return nil
	}
	block := m[1]
	if idx := strings.Index(block, "\n\n"); idx > 0 {
		block = block[:idx]
	}
	var out []string
	for _, part := range strings.FieldsFunc(block, func(r rune) bool { return r == ',' || r == '\n' || r == '•' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
