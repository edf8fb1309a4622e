package domain

// RiskLevel classifies the overall hiring risk derived from a risk table.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// RiskFactor is one scored dimension of the shared risk table module, used
// by both the single_candidate and risk_assessment structures (§4.10).
type RiskFactor struct {
	Name  string
	Score float64 // 0 (no risk) .. 100 (high risk)
	Detail string
}

// RiskTable is the shared risk-table module's output: five factors plus a
// generated overall classification.
type RiskTable struct {
	Factors      []RiskFactor
	OverallScore float64
	OverallLevel RiskLevel
	Summary      string
}

// MatchStatus is a requirement's match classification in the match-score
// module.
type MatchStatus string

const (
	MatchMet     MatchStatus = "met"
	MatchPartial MatchStatus = "partial"
	MatchMissing MatchStatus = "missing"
)

// RequirementMatch is one classified requirement in a match-score result.
type RequirementMatch struct {
	Requirement string
	Status      MatchStatus
	Detail      string
}

// MatchScoreResult is the shared match-score module's output: a
// per-requirement breakdown and a combined overall percentage.
type MatchScoreResult struct {
	Matches []RequirementMatch
	Overall float64 // 0..100
}

// RankingCriterionScore is one deterministic criterion score within a
// ranking-table row.
type RankingCriterionScore struct {
	Criterion string
	Score     float64 // 0..100
}

// RankingRow is one candidate's row in a ranking table: per-criterion
// scores plus the weighted overall.
type RankingRow struct {
	CVID          string
	CandidateName string
	Criteria      []RankingCriterionScore
	Overall       float64
}

// RankingTable is the shared ranking-table module's output, sorted by
// Overall descending.
type RankingTable struct {
	Rows []RankingRow
}

// TeamMemberCard is one candidate's summary card within a team_build
// structure.
type TeamMemberCard struct {
	CVID          string
	CandidateName string
	Role          string
	Seniority     string
	TopSkills     []string
}

// SkillMatrixEntry records which team members cover one skill.
type SkillMatrixEntry struct {
	Skill        string
	CoveredBy    []string // candidate names
	CoverageRate float64  // CoveredBy / team size, 0..1
}

// SynergyNote is a generated observation about how the team's members
// complement or overlap each other.
type SynergyNote struct {
	Kind    string // "complementary" | "overlap" | "gap"
	Summary string
}

// GapAnalysisItem is one requirement the team (or candidate) does not meet.
type GapAnalysisItem struct {
	Requirement string
	Severity    string // "critical" | "moderate" | "minor"
	Detail      string
}

// RedFlag is one concerning pattern surfaced from enriched metadata.
type RedFlag struct {
	Kind   string
	Detail string
}

// TimelineEvent is one chronological entry in a candidate's career
// timeline, derived from parsed positions.
type TimelineEvent struct {
	Year    int
	Title   string
	Company string
	Ongoing bool
}

// SkillDistribution is one bucket of the summary structure's skill
// frequency breakdown.
type SkillDistribution struct {
	Skill string
	Count int
}

// ExperienceDistribution is one bucket of the summary structure's
// experience-band histogram.
type ExperienceDistribution struct {
	Band  string // e.g. "0-2y", "3-5y", "6-10y", "10y+"
	Count int
}

// Verdict is the claim-verification outcome reported by the verification
// structure (§4.10), distinct from the pass/fail VerificationInfo used by
// the generic pipeline-level verifier (C9).
type Verdict string

const (
	VerdictConfirmed   Verdict = "CONFIRMED"
	VerdictPartial     Verdict = "PARTIAL"
	VerdictNotFound    Verdict = "NOT_FOUND"
	VerdictContradicted Verdict = "CONTRADICTED"
)

// StructuredResponse is the typed JSON document returned by a structure
// builder (C12): a structure_type tag, the shared narrative fields
// inherited from the output processor (C10), and a structure-specific
// payload in Fields. Markdown is a best-effort rendering used as a
// fallback display when a client cannot render Fields directly.
type StructuredResponse struct {
	StructureType string
	Thinking      string
	DirectAnswer  string
	Analysis      string
	Conclusion    string
	Fields        map[string]any
	Markdown      string
}
