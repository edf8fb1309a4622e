package modules

import (
	"fmt"
	"sort"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const (
	jobHoppingRedFlagFloor  = 0.6
	employmentGapRedFlagMin = 2
	shortTenureRedFlagYears = 1.0
)

// DetectRedFlags scans enriched metadata for concerning patterns: heavy
// job hopping, repeated employment gaps, and very short average tenure.
func DetectRedFlags(metadata domain.EnrichedMetadata) []domain.RedFlag {
	var flags []domain.RedFlag

	if metadata.JobHoppingScore >= jobHoppingRedFlagFloor {
		flags = append(flags, domain.RedFlag{
			Kind:   "job_hopping",
			Detail: fmt.Sprintf("job-hopping score %.2f is high", metadata.JobHoppingScore),
		})
	}
	if metadata.EmploymentGapCount >= employmentGapRedFlagMin {
		flags = append(flags, domain.RedFlag{
			Kind:   "employment_gaps",
			Detail: fmt.Sprintf("%d employment gaps detected", metadata.EmploymentGapCount),
		})
	}
	if metadata.PositionCount > 1 && metadata.AvgTenureYears < shortTenureRedFlagYears {
		flags = append(flags, domain.RedFlag{
			Kind:   "short_tenure",
			Detail: fmt.Sprintf("average tenure of %.1fy across %d roles", metadata.AvgTenureYears, metadata.PositionCount),
		})
	}
	return flags
}

// BuildGapAnalysis reports, for a set of required skills, which are absent
// from the candidate's metadata, classified by severity (required skills
// always rank critical; this module does not see preferred-skill context,
// callers wanting that distinction pass two calls).
func BuildGapAnalysis(metadata domain.EnrichedMetadata, requiredSkills []string) []domain.GapAnalysisItem {
	have := make(map[string]bool, len(metadata.Skills))
	for _, s := range metadata.Skills {
		have[normalizeGapSkill(s)] = true
	}
	var gaps []domain.GapAnalysisItem
	for _, req := range requiredSkills {
		if !have[normalizeGapSkill(req)] {
			gaps = append(gaps, domain.GapAnalysisItem{
				Requirement: req,
				Severity:    "critical",
				Detail:      fmt.Sprintf("%q not found among parsed skills", req),
			})
		}
	}
	return gaps
}

func normalizeGapSkill(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// BuildTimeline orders a candidate's parsed positions chronologically,
// oldest first, using StartYear (0 = undated, sorted last).
func BuildTimeline(metadata domain.EnrichedMetadata) []domain.TimelineEvent {
	events := make([]domain.TimelineEvent, 0, len(metadata.Positions))
	for _, p := range metadata.Positions {
		events = append(events, domain.TimelineEvent{
			Year:    p.StartYear,
			Title:   p.Title,
			Company: p.Company,
			Ongoing: p.IsCurrent,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Year == 0 {
			return false
		}
		if events[j].Year == 0 {
			return true
		}
		return events[i].Year < events[j].Year
	})
	return events
}
