package structures

import (
	"strconv"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// adaptiveColumnKeywords maps a keyword that may appear in the query to the
// EnrichedMetadata-derived column it should surface (§4.10: "columns
// chosen from the query: skills / languages / experience / education /
// …").
var adaptiveColumnKeywords = []struct {
	keyword string
	column  string
}{
	{"skill", "skills"},
	{"language", "languages"},
	{"experience", "experience_years"},
	{"education", "education"},
	{"certification", "certifications"},
	{"location", "location"},
	{"seniority", "seniority"},
}

var defaultAdaptiveColumns = []string{"skills", "experience_years"}

// BuildAdaptive assembles the adaptive structure: a dynamic table whose
// columns are inferred from the query text, plus a distribution analysis,
// used when no other structure matches the query type (§4.10).
func BuildAdaptive(in BuildInput) (domain.StructuredResponse, error) {
	columns := adaptiveColumns(in.Understanding)
	cands := in.Candidates()

	rows := make([]map[string]any, 0, len(cands))
	for _, c := range cands {
		row := map[string]any{"cv_id": c.CVID, "candidate_name": c.CandidateName}
		for _, col := range columns {
			row[col] = adaptiveCellValue(col, c)
		}
		rows = append(rows, row)
	}

	fields := map[string]any{
		"columns": columns,
		"rows":    rows,
		"distribution": map[string]any{
			"top_skills":              topSkills(cands, topSkillCount),
			"experience_distribution": experienceDistribution(cands),
		},
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeAdaptive),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    in.Output.Conclusion,
		Fields:        fields,
	}, nil
}

func adaptiveColumns(u domain.QueryUnderstanding) []string {
	text := strings.ToLower(u.Understood + " " + strings.Join(u.Requirements, " "))
	var columns []string
	seen := map[string]bool{}
	for _, k := range adaptiveColumnKeywords {
		if strings.Contains(text, k.keyword) && !seen[k.column] {
			columns = append(columns, k.column)
			seen[k.column] = true
		}
	}
	if len(columns) == 0 {
		return defaultAdaptiveColumns
	}
	return columns
}

func adaptiveCellValue(column string, c Candidate) any {
	switch column {
	case "skills":
		return c.Metadata.Skills
	case "languages":
		return c.Metadata.Languages
	case "experience_years":
		return strconv.FormatFloat(c.Metadata.TotalExperienceYears, 'f', 1, 64)
	case "education":
		return c.Metadata.Education
	case "certifications":
		return c.Metadata.Certifications
	case "location":
		return c.Metadata.Location
	case "seniority":
		return string(c.Metadata.Seniority)
	default:
		return nil
	}
}
