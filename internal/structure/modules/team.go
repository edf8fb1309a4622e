package modules

import (
	"fmt"
	"sort"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// TeamMember pairs a candidate's identity with their enriched metadata,
// the unit the team_build structure's modules operate over.
type TeamMember struct {
	CVID          string
	CandidateName string
	Metadata      domain.EnrichedMetadata
}

// BuildMemberCards summarizes each member into a display card.
func BuildMemberCards(team []TeamMember) []domain.TeamMemberCard {
	cards := make([]domain.TeamMemberCard, 0, len(team))
	for _, m := range team {
		top := m.Metadata.Skills
		if len(top) > 5 {
			top = top[:5]
		}
		cards = append(cards, domain.TeamMemberCard{
			CVID:          m.CVID,
			CandidateName: m.CandidateName,
			Role:          m.Metadata.CurrentRole,
			Seniority:     string(m.Metadata.Seniority),
			TopSkills:     top,
		})
	}
	return cards
}

// BuildSkillMatrix maps each distinct skill across the team to the members
// who hold it, sorted by coverage descending then skill name.
func BuildSkillMatrix(team []TeamMember) []domain.SkillMatrixEntry {
	coverage := map[string][]string{}
	for _, m := range team {
		for _, skill := range m.Metadata.Skills {
			coverage[skill] = append(coverage[skill], m.CandidateName)
		}
	}

	entries := make([]domain.SkillMatrixEntry, 0, len(coverage))
	teamSize := float64(len(team))
	for skill, names := range coverage {
		rate := 0.0
		if teamSize > 0 {
			rate = float64(len(names)) / teamSize
		}
		entries = append(entries, domain.SkillMatrixEntry{
			Skill:        skill,
			CoveredBy:    names,
			CoverageRate: rate,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CoverageRate != entries[j].CoverageRate {
			return entries[i].CoverageRate > entries[j].CoverageRate
		}
		return entries[i].Skill < entries[j].Skill
	})
	return entries
}

// BuildSynergy flags skills only one member holds (gaps if the team is
// larger than one) and skills every member shares (overlap), using the
// same coverage computed for the skill matrix.
func BuildSynergy(team []TeamMember, matrix []domain.SkillMatrixEntry) []domain.SynergyNote {
	var notes []domain.SynergyNote
	teamSize := len(team)
	for _, entry := range matrix {
		switch {
		case teamSize > 1 && len(entry.CoveredBy) == teamSize:
			notes = append(notes, domain.SynergyNote{
				Kind:    "overlap",
				Summary: fmt.Sprintf("Every member covers %s — redundant, not a gap risk.", entry.Skill),
			})
		case teamSize > 1 && len(entry.CoveredBy) == 1:
			notes = append(notes, domain.SynergyNote{
				Kind:    "gap",
				Summary: fmt.Sprintf("Only %s covers %s — single point of failure.", entry.CoveredBy[0], entry.Skill),
			})
		}
	}
	if len(notes) == 0 && teamSize > 1 {
		notes = append(notes, domain.SynergyNote{
			Kind:    "complementary",
			Summary: "Skills are well distributed across the team with no single point of failure.",
		})
	}
	return notes
}

// BuildTeamRisks aggregates each member's risk table into team-level red
// flags, adding one flag per member whose overall risk level is not low.
func BuildTeamRisks(team []TeamMember) []domain.RedFlag {
	var flags []domain.RedFlag
	for _, m := range team {
		table := BuildRiskTable(m.Metadata)
		if table.OverallLevel == domain.RiskLow {
			continue
		}
		flags = append(flags, domain.RedFlag{
			Kind:   string(table.OverallLevel) + "_risk",
			Detail: fmt.Sprintf("%s: %s", m.CandidateName, table.Summary),
		})
	}
	return flags
}
