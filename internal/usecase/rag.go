package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/contextresolver"
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/guardrail"
	"github.com/cvqa/retrieval-engine/internal/outputproc"
	"github.com/cvqa/retrieval-engine/internal/retrieval"
	"github.com/cvqa/retrieval-engine/internal/structure"
	"github.com/cvqa/retrieval-engine/internal/structure/structures"
	"github.com/cvqa/retrieval-engine/internal/suggestion"
	"github.com/cvqa/retrieval-engine/internal/verifier"
)

// Timeouts groups the per-stage provider deadlines applied around each
// suspension point (§5).
type Timeouts struct {
	Understanding time.Duration
	Rerank        time.Duration
	Verify        time.Duration
	Generate      time.Duration
	Embed         time.Duration
	Search        time.Duration
}

// TimeoutsFromConfig builds Timeouts from the loaded application config.
func TimeoutsFromConfig(cfg config.Config) Timeouts {
	return Timeouts{
		Understanding: cfg.TimeoutUnderstanding,
		Rerank:        cfg.TimeoutRerank,
		Verify:        cfg.TimeoutVerify,
		Generate:      cfg.TimeoutGenerate,
		Embed:         cfg.TimeoutEmbed,
		Search:        cfg.TimeoutSearch,
	}
}

// RAGService is the orchestrator (C16): it drives understand -> guardrail ->
// embed+search -> rerank -> generate -> verify -> structure assembly -> log
// for a single query, and embed+store for ingestion. It is built once in
// internal/app's wiring step and passed down by reference — no package-level
// singleton (Design Note §9's "explicit dependencies constructed once"
// re-framing of the teacher's pervasive-singleton style).
type RAGService struct {
	understander *QueryUnderstander
	guard        *guardrail.Guardrail
	retriever    *retrieval.Engine
	reranker     domain.Reranker
	generator    *Generator
	verifier     *verifier.Verifier
	suggestions  *suggestion.Engine
	evalLog      domain.EvalLog
	mode         string
	timeouts     Timeouts
}

// Deps bundles RAGService's collaborators so New has a single, named-field
// call site instead of a long positional argument list.
type Deps struct {
	Understander *QueryUnderstander
	Guardrail    *guardrail.Guardrail
	Retrieval    *retrieval.Engine
	Reranker     domain.Reranker
	Generator    *Generator
	Verifier     *verifier.Verifier
	Suggestions  *suggestion.Engine
	EvalLog      domain.EvalLog
	Mode         string // "local" | "cloud", stamped on every response (§6)
	Timeouts     Timeouts
}

// New builds a RAGService from its already-constructed collaborators.
func New(d Deps) *RAGService {
	return &RAGService{
		understander: d.Understander,
		guard:        d.Guardrail,
		retriever:    d.Retrieval,
		reranker:     d.Reranker,
		generator:    d.Generator,
		verifier:     d.Verifier,
		suggestions:  d.Suggestions,
		evalLog:      d.EvalLog,
		mode:         d.Mode,
		timeouts:     d.Timeouts,
	}
}

// QueryRequest is the orchestrator's single entry point parameter set,
// matching spec.md §4.13's `query(question, session_id?, cv_ids?, ...)`.
type QueryRequest struct {
	Question  string
	SessionID string
	CVIDs     []string
	History   []domain.Message
	TotalCVs  int // size of the session's CV pool, for the "no CVs" boundary (§8)
}

const noCVsMessage = "There are no indexed CVs in this session yet. Upload or index at least one CV before asking a question."

// Query runs the full pipeline for one question and returns the assembled
// domain.RAGResponse plus the follow-up suggestions for this turn. It never
// panics: every stage degrades per §7's error-handling design rather than
// propagating a bare error, except for edge-level InputInvalid.
func (s *RAGService) Query(ctx domain.Context, req QueryRequest) (domain.RAGResponse, []suggestion.Suggestion, error) {
	start := time.Now()
	if strings.TrimSpace(req.Question) == "" {
		return domain.RAGResponse{}, nil, fmt.Errorf("op=usecase.Query: %w: empty question", domain.ErrInvalidArgument)
	}
	if req.TotalCVs == 0 {
		return s.finish(ctx, req, domain.RAGResponse{
			Answer:          noCVsMessage,
			GuardrailPassed: true,
			Mode:            s.mode,
		}, nil, start)
	}

	resolvedQuery := req.Question
	if resolved, _, cvID, ok := contextresolver.ResolveQueryWithContext(req.Question, req.History); ok {
		resolvedQuery = resolved
		if cvID != "" && len(req.CVIDs) == 0 {
			req.CVIDs = []string{cvID}
		}
	}

	var metrics domain.Metrics

	understandStart := time.Now()
	understandCtx, cancel := context.WithTimeout(ctx, s.timeouts.Understanding)
	qu, err := s.understander.Understand(understandCtx, resolvedQuery)
	cancel()
	metrics.UnderstandingMS = time.Since(understandStart).Milliseconds()
	if err != nil {
		// Understand() already degraded to a usable fallback; keep going.
		_ = err
	}

	if pass, reason := s.guard.Check(qu, req.Question); !pass {
		resp := domain.RAGResponse{
			Answer:             reason,
			GuardrailPassed:    false,
			QueryUnderstanding: qu,
			Mode:               s.mode,
			Metrics:            metrics,
		}
		return s.finish(ctx, req, resp, nil, start)
	}

	results, err := s.retrieve(ctx, resolvedQuery, qu, req.CVIDs, &metrics)
	if err != nil {
		resp := domain.RAGResponse{
			Answer:             "I couldn't find any relevant information in the indexed CVs for that question.",
			GuardrailPassed:    true,
			QueryUnderstanding: qu,
			Mode:               s.mode,
			Metrics:            metrics,
			Confidence:         retrieval.NoResultConfidence,
		}
		return s.finish(ctx, req, resp, nil, start)
	}

	if s.reranker != nil {
		rerankStart := time.Now()
		rerankCtx, cancel := context.WithTimeout(ctx, s.timeouts.Rerank)
		reranked, rerankErr := s.reranker.Rerank(rerankCtx, resolvedQuery, results)
		cancel()
		metrics.RerankMS = time.Since(rerankStart).Milliseconds()
		if rerankErr == nil {
			results = reranked
		}
	}

	generateStart := time.Now()
	generateCtx, cancel := context.WithTimeout(ctx, s.timeouts.Generate)
	gen, err := s.generator.Generate(generateCtx, qu, req.History, results)
	cancel()
	metrics.GenerateMS = time.Since(generateStart).Milliseconds()
	if err != nil {
		resp := domain.RAGResponse{
			Answer:             "The answer could not be generated right now. Please try again.",
			Sources:            results,
			GuardrailPassed:    true,
			QueryUnderstanding: qu,
			Mode:               s.mode,
			Metrics:            metrics,
		}
		return s.finish(ctx, req, resp, results, start)
	}

	rawAnswer := gen.Text
	if strings.TrimSpace(rawAnswer) == "" {
		rawAnswer = "Response could not be parsed."
	}
	output := outputproc.Process(rawAnswer, results)

	verifyStart := time.Now()
	verifyCtx, cancel := context.WithTimeout(ctx, s.timeouts.Verify)
	verification := s.verifier.Verify(verifyCtx, resolvedQuery, output.DirectAnswer, results)
	cancel()
	metrics.VerifyMS = time.Since(verifyStart).Milliseconds()

	structured, structErr := structure.Dispatch(qu.Type, structures.BuildInput{
		Understanding:  qu,
		Output:         output,
		Results:        results,
		Verification:   verification,
		TotalCVs:       req.TotalCVs,
		RequiredSkills: qu.Requirements,
	})

	metrics.TotalMS = time.Since(start).Milliseconds()

	resp := domain.RAGResponse{
		Answer:             output.DirectAnswer,
		Sources:            results,
		Metrics:            metrics,
		Confidence:         verification.Combined,
		GuardrailPassed:    true,
		Verification:       verification,
		QueryUnderstanding: qu,
		Mode:               s.mode,
	}
	if structErr == nil {
		resp.Structured = structured
		resp.Answer = structured.DirectAnswer
	}

	return s.finish(ctx, req, resp, results, start)
}

func (s *RAGService) retrieve(ctx domain.Context, query string, qu domain.QueryUnderstanding, cvIDs []string, metrics *domain.Metrics) ([]domain.SearchResult, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.timeouts.Search)
	defer cancel()
	start := time.Now()
	results, _, err := s.retriever.Search(searchCtx, query, qu.Type, cvIDs)
	metrics.SearchMS = time.Since(start).Milliseconds()
	return results, err
}

// finish assembles follow-up suggestions, appends the eval-log record, and
// returns the response. Logging happens only after the full response is
// assembled, per §5's "partial logs must not be written".
func (s *RAGService) finish(ctx domain.Context, req QueryRequest, resp domain.RAGResponse, results []domain.SearchResult, start time.Time) (domain.RAGResponse, []suggestion.Suggestion, error) {
	var suggestions []suggestion.Suggestion
	if s.suggestions != nil {
		history := append(append([]domain.Message{}, req.History...), domain.Message{
			Role:          domain.RoleAssistant,
			Content:       resp.Answer,
			StructureType: structureTypeOf(resp),
		})
		got, err := s.suggestions.Suggest(ctx, suggestion.Request{
			SessionID: req.SessionID,
			History:   history,
			CVIDs:     req.CVIDs,
			CVCount:   req.TotalCVs,
		})
		if err == nil {
			suggestions = got
		}
	}

	if s.evalLog != nil {
		_ = s.evalLog.Append(ctx, domain.EvalLogRecord{
			TS:                 start.UTC().Format(time.RFC3339),
			Query:              req.Question,
			ResponseExcerpt:    excerpt(resp.Answer, 280),
			Sources:            sourceCVIDs(results),
			Metrics:            resp.Metrics,
			HallucinationCheck: resp.Verification,
			GuardrailPassed:    resp.GuardrailPassed,
			SessionID:          req.SessionID,
			Mode:               s.mode,
		})
	}

	return resp, suggestions, nil
}

func structureTypeOf(resp domain.RAGResponse) string {
	sr, ok := resp.Structured.(domain.StructuredResponse)
	if !ok {
		return ""
	}
	return sr.StructureType
}

func sourceCVIDs(results []domain.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.CVID == "" || seen[r.CVID] {
			continue
		}
		seen[r.CVID] = true
		out = append(out, r.CVID)
	}
	return out
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
