// Package structures implements the ten typed response structures (C12):
// each is a pure function from a BuildInput (the already-generated answer,
// retrieved chunks, and resolved query) to a domain.StructuredResponse.
package structures

import (
	"sort"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/structure/modules"
)

// BuildInput is the shared input every structure builder receives. It
// carries the C4 query understanding, the C10 output-processor result, the
// raw retrieved chunks it was derived from, and (for job_match/ranking)
// optional scoring context.
type BuildInput struct {
	Understanding domain.QueryUnderstanding
	Output        domain.StructuredOutput
	Results       []domain.SearchResult
	Verification  domain.VerificationInfo
	TotalCVs      int

	// RequiredSkills is set by the orchestrator from the query's extracted
	// requirements. The orchestrator leaves RankingWeights nil, which gives
	// equal default weights. Both may be nil.
	RequiredSkills []string
	RankingWeights map[string]float64
}

// Candidate aggregates one CV's identity and metadata from its retrieved
// chunks (all chunks of one CV share identical EnrichedMetadata, §3.1).
type Candidate struct {
	CVID          string
	CandidateName string
	Metadata      domain.EnrichedMetadata
}

// Candidates groups in.Results by CVID, preferring the table-derived
// candidate name from in.Output when a row names that CV, and falling
// back to the CVID itself so every structure can still render something.
func (in BuildInput) Candidates() []Candidate {
	order := make([]string, 0)
	byID := make(map[string]Candidate)
	for _, r := range in.Results {
		c, ok := byID[r.CVID]
		if !ok {
			c = Candidate{CVID: r.CVID, CandidateName: r.CVID, Metadata: r.Metadata}
			order = append(order, r.CVID)
		}
		byID[r.CVID] = c
	}
	for _, row := range in.Output.TableData {
		if c, ok := byID[row.CVID]; ok && row.CandidateName != "" {
			c.CandidateName = row.CandidateName
			byID[row.CVID] = c
		}
	}
	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

// PrimaryCandidate returns the first candidate (single_candidate,
// risk_assessment, verification queries resolve to exactly one CV, §2
// Context Resolver), or the zero value when none were retrieved.
func (in BuildInput) PrimaryCandidate() (Candidate, bool) {
	cands := in.Candidates()
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

func teamMembers(cands []Candidate) []modules.TeamMember {
	out := make([]modules.TeamMember, len(cands))
	for i, c := range cands {
		out[i] = modules.TeamMember{CVID: c.CVID, CandidateName: c.CandidateName, Metadata: c.Metadata}
	}
	return out
}

func rankingCandidates(cands []Candidate) []modules.RankingCandidate {
	out := make([]modules.RankingCandidate, len(cands))
	for i, c := range cands {
		out[i] = modules.RankingCandidate{CVID: c.CVID, CandidateName: c.CandidateName, Metadata: c.Metadata}
	}
	return out
}

func topSkills(all []Candidate, n int) []domain.SkillDistribution {
	counts := map[string]int{}
	for _, c := range all {
		for _, s := range c.Metadata.Skills {
			counts[s]++
		}
	}
	dist := make([]domain.SkillDistribution, 0, len(counts))
	for skill, count := range counts {
		dist = append(dist, domain.SkillDistribution{Skill: skill, Count: count})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Skill < dist[j].Skill
	})
	if len(dist) > n {
		dist = dist[:n]
	}
	return dist
}

func experienceDistribution(all []Candidate) []domain.ExperienceDistribution {
	bands := []struct {
		name string
		max  float64
	}{
		{"0-2y", 2}, {"3-5y", 5}, {"6-10y", 10}, {"10y+", -1},
	}
	counts := make([]int, len(bands))
	for _, c := range all {
		years := c.Metadata.TotalExperienceYears
		for i, b := range bands {
			if b.max < 0 || years <= b.max {
				counts[i]++
				break
			}
		}
	}
	out := make([]domain.ExperienceDistribution, len(bands))
	for i, b := range bands {
		out[i] = domain.ExperienceDistribution{Band: b.name, Count: counts[i]}
	}
	return out
}
