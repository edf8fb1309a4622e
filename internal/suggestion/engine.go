// Package suggestion implements the follow-up prompt suggestion engine
// (C13): given conversation state it selects template suggestions from
// category-specific banks, fills their placeholders, and tracks which
// suggestions a session has already seen so they are not repeated.
package suggestion

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cvqa/retrieval-engine/internal/contextresolver"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Category names the ten structure-specific banks plus the catch-all
// "initial" bank used when there is no prior turn and as a backfill source
// (§4.11).
type Category string

const (
	CategoryInitial         Category = "initial"
	CategorySingleCandidate Category = "single_candidate"
	CategoryRanking         Category = "ranking"
	CategoryComparison      Category = "comparison"
	CategorySearch          Category = "search"
	CategoryJobMatch        Category = "job_match"
	CategoryTeamBuild       Category = "team_build"
	CategoryRiskAssessment  Category = "risk_assessment"
	CategoryVerification    Category = "verification"
	CategorySummary         Category = "summary"
	CategoryAdaptive        Category = "adaptive"
)

// Template is one candidate suggestion: display text with placeholders,
// a selection priority (1 = highest), and the conditions under which it is
// eligible (§4.11).
type Template struct {
	ID                  string
	Category            Category
	Priority            int
	Text                string
	MinCVs              int
	RequiresMultipleCVs bool
}

// Suggestion is one filled-in suggestion returned to the caller.
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// EmittedStore tracks, per session, which suggestion ids have already been
// surfaced so they are not repeated (§4.11, §5: "singleton services with
// internal locks"). The default in-memory implementation below satisfies
// this for a single process; a Redis-backed implementation is wired in
// when REDIS_URL is configured (SPEC_FULL §1.2 wiring table), in
// internal/adapter/suggestioncache.
type EmittedStore interface {
	Seen(ctx domain.Context, sessionID, suggestionID string) (bool, error)
	MarkSeen(ctx domain.Context, sessionID, suggestionID string) error
}

// MemoryEmittedStore is a mutex-guarded in-memory EmittedStore, the
// default when no shared store is configured.
type MemoryEmittedStore struct {
	mu   sync.Mutex
	seen map[string]map[string]bool
}

// NewMemoryEmittedStore returns an empty, ready-to-use store.
func NewMemoryEmittedStore() *MemoryEmittedStore {
	return &MemoryEmittedStore{seen: map[string]map[string]bool{}}
}

// Seen reports whether suggestionID was already emitted in sessionID.
func (s *MemoryEmittedStore) Seen(_ domain.Context, sessionID, suggestionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[sessionID][suggestionID], nil
}

// MarkSeen records suggestionID as emitted in sessionID.
func (s *MemoryEmittedStore) MarkSeen(_ domain.Context, sessionID, suggestionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[sessionID] == nil {
		s.seen[sessionID] = map[string]bool{}
	}
	s.seen[sessionID][suggestionID] = true
	return nil
}

// Engine selects and fills follow-up suggestions. It is safe for
// concurrent use: all mutable state lives in the injected EmittedStore.
type Engine struct {
	banks map[Category][]Template
	store EmittedStore
	rng   *rand.Rand
	rngMu sync.Mutex
}

// New builds an Engine from the default template banks plus the
// configured seed questions (SuggestionSeeds, loaded into the INITIAL
// bank). store may be nil to use an in-memory MemoryEmittedStore.
func New(seeds []string, store EmittedStore) *Engine {
	if store == nil {
		store = NewMemoryEmittedStore()
	}
	return &Engine{
		banks: defaultBanks(seeds),
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Request describes the conversation state the engine selects from.
type Request struct {
	SessionID string
	History   []domain.Message
	CVIDs     []string
	CVCount   int
	Count     int // how many suggestions to return
}

// Suggest returns up to req.Count filled suggestions, selected per §4.11:
// bank chosen from the last turn's structure_type, filtered by eligibility,
// grouped by priority with in-group randomization, skipping already-seen
// ids, backfilling from INITIAL when the primary bank runs dry.
func (e *Engine) Suggest(ctx domain.Context, req Request) ([]Suggestion, error) {
	if req.Count <= 0 {
		req.Count = 3
	}
	mentions := extractMentions(req.History)

	category := lastStructureCategory(req.History)
	primary := e.banks[category]
	backfill := e.banks[CategoryInitial]

	out := make([]Suggestion, 0, req.Count)
	usedIDs := map[string]bool{}

	for _, bank := range [][]Template{primary, backfill} {
		if len(out) >= req.Count {
			break
		}
		picked, err := e.pickFromBank(ctx, req, bank, usedIDs, req.Count-len(out))
		if err != nil {
			return nil, err
		}
		for _, t := range picked {
			out = append(out, fillPlaceholders(t, mentions, req.CVCount))
			usedIDs[t.ID] = true
		}
	}
	return out, nil
}

func (e *Engine) pickFromBank(ctx domain.Context, req Request, bank []Template, usedIDs map[string]bool, need int) ([]Template, error) {
	eligible := make([]Template, 0, len(bank))
	for _, t := range bank {
		if usedIDs[t.ID] {
			continue
		}
		if t.MinCVs > req.CVCount {
			continue
		}
		if t.RequiresMultipleCVs && len(req.CVIDs) < 2 {
			continue
		}
		seen, err := e.store.Seen(ctx, req.SessionID, t.ID)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		eligible = append(eligible, t)
	}

	byPriority := groupByPriority(eligible)
	picked := make([]Template, 0, need)
	for _, priority := range []int{1, 2, 3} {
		group := byPriority[priority]
		e.shuffle(group)
		for _, t := range group {
			if len(picked) >= need {
				break
			}
			picked = append(picked, t)
		}
		if len(picked) >= need {
			break
		}
	}

	for _, t := range picked {
		if err := e.store.MarkSeen(ctx, req.SessionID, t.ID); err != nil {
			return nil, err
		}
	}
	return picked, nil
}

func groupByPriority(templates []Template) map[int][]Template {
	out := map[int][]Template{}
	for _, t := range templates {
		out[t.Priority] = append(out[t.Priority], t)
	}
	return out
}

func (e *Engine) shuffle(templates []Template) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(len(templates), func(i, j int) { templates[i], templates[j] = templates[j], templates[i] })
}

// lastStructureCategory reads the most recent assistant turn's
// structure_type tag, defaulting to CategoryInitial when absent (first
// turn) or unrecognized.
func lastStructureCategory(history []domain.Message) Category {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleAssistant && history[i].StructureType != "" {
			return Category(history[i].StructureType)
		}
	}
	return CategoryInitial
}

// mentions holds the placeholder values extracted from conversation state.
type mentions struct {
	candidateNames []string
	skills         []string
	roles          []string
}

// builtInSkillVocabulary/builtInRoleVocabulary are a small, deliberately
// narrow set of terms scanned for in the last assistant turn to fill the
// {skill}/{role} placeholders; the chunker's own taxonomy (C2) is not
// reused here since it classifies CV sections, not conversational mentions.
var builtInSkillVocabulary = []string{
	"go", "python", "kubernetes", "aws", "react", "sql", "java", "terraform",
}
var builtInRoleVocabulary = []string{
	"backend", "frontend", "data engineer", "devops", "tech lead", "manager",
}

func extractMentions(history []domain.Message) mentions {
	var m mentions
	last := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleAssistant {
			last = history[i].Content
			break
		}
	}
	if last == "" {
		return m
	}
	for _, ref := range contextresolver.ExtractReferences(last) {
		m.candidateNames = append(m.candidateNames, ref.Name)
	}
	lower := strings.ToLower(last)
	for _, s := range builtInSkillVocabulary {
		if strings.Contains(lower, s) {
			m.skills = append(m.skills, s)
		}
	}
	for _, r := range builtInRoleVocabulary {
		if strings.Contains(lower, r) {
			m.roles = append(m.roles, r)
		}
	}
	return m
}

// fillPlaceholders rotates through the extracted mention values (or falls
// back to a neutral default) for each occurrence of a placeholder.
func fillPlaceholders(t Template, m mentions, cvCount int) Suggestion {
	text := t.Text
	text = rotateReplace(text, "{candidate_name}", m.candidateNames, "the candidate")
	text = rotateReplace(text, "{skill}", m.skills, "that skill")
	text = rotateReplace(text, "{role}", m.roles, "that role")
	text = strings.ReplaceAll(text, "{num_cvs}", strconv.Itoa(cvCount))
	return Suggestion{ID: t.ID, Text: text}
}

func rotateReplace(text, placeholder string, values []string, fallback string) string {
	if !strings.Contains(text, placeholder) {
		return text
	}
	idx := 0
	for strings.Contains(text, placeholder) {
		val := fallback
		if len(values) > 0 {
			val = values[idx%len(values)]
			idx++
		}
		text = strings.Replace(text, placeholder, val, 1)
	}
	return text
}

func defaultBanks(seeds []string) map[Category][]Template {
	banks := map[Category][]Template{
		CategorySingleCandidate: {
			{ID: "single_candidate_risk", Category: CategorySingleCandidate, Priority: 1, Text: "What are the career risks for {candidate_name}?"},
			{ID: "single_candidate_compare", Category: CategorySingleCandidate, Priority: 2, Text: "How does {candidate_name} compare to the other candidates?", MinCVs: 2, RequiresMultipleCVs: true},
		},
		CategoryRanking: {
			{ID: "ranking_top_skill", Category: CategoryRanking, Priority: 1, Text: "Why does {candidate_name} rank highest for {skill}?"},
			{ID: "ranking_narrow", Category: CategoryRanking, Priority: 2, Text: "Re-rank these candidates focusing only on {role} experience."},
		},
		CategoryComparison: {
			{ID: "comparison_deep_dive", Category: CategoryComparison, Priority: 1, Text: "Give a deeper comparison of {candidate_name} on {skill}."},
		},
		CategorySearch: {
			{ID: "search_refine", Category: CategorySearch, Priority: 1, Text: "Narrow these results to candidates with {skill} experience."},
			{ID: "search_broaden", Category: CategorySearch, Priority: 3, Text: "Show me all {num_cvs} indexed candidates regardless of match."},
		},
		CategoryJobMatch: {
			{ID: "job_match_gaps", Category: CategoryJobMatch, Priority: 1, Text: "What gaps does {candidate_name} have against this job description?"},
		},
		CategoryTeamBuild: {
			{ID: "team_build_synergy", Category: CategoryTeamBuild, Priority: 1, Text: "How well would {candidate_name} complement this team?", MinCVs: 2, RequiresMultipleCVs: true},
		},
		CategoryRiskAssessment: {
			{ID: "risk_mitigate", Category: CategoryRiskAssessment, Priority: 1, Text: "What would mitigate the risks identified for {candidate_name}?"},
		},
		CategoryVerification: {
			{ID: "verification_more_evidence", Category: CategoryVerification, Priority: 1, Text: "Show me more evidence for that claim about {candidate_name}."},
		},
		CategorySummary: {
			{ID: "summary_top_skills", Category: CategorySummary, Priority: 1, Text: "Which {skill} skills are most common across all {num_cvs} candidates?"},
		},
		CategoryAdaptive: {
			{ID: "adaptive_add_column", Category: CategoryAdaptive, Priority: 2, Text: "Add {skill} as a column to this breakdown."},
		},
	}

	initial := make([]Template, 0, len(seeds))
	for i, seed := range seeds {
		initial = append(initial, Template{
			ID:       "initial_" + strconv.Itoa(i),
			Category: CategoryInitial,
			Priority: 1,
			Text:     seed,
		})
	}
	banks[CategoryInitial] = initial
	return banks
}
