package domain

//go:generate mockery --name=VectorStore --with-expecter --filename=vectorstore_mock.go
//go:generate mockery --name=Embedder --with-expecter --filename=embedder_mock.go
//go:generate mockery --name=LLM --with-expecter --filename=llm_mock.go
//go:generate mockery --name=Reranker --with-expecter --filename=reranker_mock.go
//go:generate mockery --name=TextExtractor --with-expecter --filename=textextractor_mock.go
//go:generate mockery --name=SessionStore --with-expecter --filename=sessionstore_mock.go
//go:generate mockery --name=EvalLog --with-expecter --filename=evallog_mock.go
//go:generate mockery --name=IndexQueue --with-expecter --filename=indexqueue_mock.go

// EmbeddingResult is the shape returned by Embedder calls, carrying usage and
// latency so the caller can attribute cost/time per provider call (§6).
type EmbeddingResult struct {
	Embeddings [][]float32
	TokensUsed int
	LatencyMS  int64
}

// Embedder abstracts the embedding provider (C1).
type Embedder interface {
	// EmbedTexts embeds a batch of documents for indexing.
	EmbedTexts(ctx Context, texts []string) (EmbeddingResult, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx Context, text string) (EmbeddingResult, error)
}

// VectorStore abstracts the vector database (C1). CVs and chunks are owned
// by the store; the orchestrator only holds transient references by id (§3.2).
type VectorStore interface {
	// AddDocuments upserts chunks with their pre-computed embeddings.
	AddDocuments(ctx Context, chunks []Chunk) error
	// Search returns up to k results above threshold, optionally scoped to
	// cvIDs and diversified (no more than ceil(k/len(cvIDs)) hits per CV).
	Search(ctx Context, vector []float32, k int, threshold float64, cvIDs []string, diversifyByCV bool) ([]SearchResult, error)
	// GetStats returns a coarse view of store contents (used for readiness and N).
	GetStats(ctx Context) (VectorStoreStats, error)
	// DeleteByCVID removes all chunks belonging to a CV.
	DeleteByCVID(ctx Context, cvID string) error
	// GetMetadataByCVID returns the enriched metadata and filename recorded
	// for cvID (every chunk of a CV carries the same CV-level metadata), used
	// by the scoring service (C14) to score an already-indexed CV.
	GetMetadataByCVID(ctx Context, cvID string) (EnrichedMetadata, string, error)
	// Ping checks connectivity for readiness probes.
	Ping(ctx Context) error
}

// VectorStoreStats is a coarse summary used to size the adaptive retrieval
// strategy (C6) and to answer "N=0 CVs" boundary checks.
type VectorStoreStats struct {
	TotalCVs    int
	TotalChunks int
}

// GenerationResult is the shape returned by LLM.Generate calls.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Model            string
}

// LLM abstracts the chat/completion provider (C1), used by query
// understanding (C4), generation (C8), and verification (C9).
type LLM interface {
	// Generate completes a prompt, optionally with a system prompt.
	Generate(ctx Context, systemPrompt, prompt string) (GenerationResult, error)
}

// Reranker abstracts the optional LLM re-ranking stage (C7).
type Reranker interface {
	// Rerank returns results re-ordered by relevance to query; on failure,
	// implementations should be wrapped so the caller can fall back to the
	// original order rather than treat this as fatal (§4.6).
	Rerank(ctx Context, query string, results []SearchResult) ([]SearchResult, error)
}

// TextExtractor abstracts PDF/bytes-to-text extraction (out of scope per §1,
// injected as a port).
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// SessionStore abstracts session persistence (out of scope per §1, injected
// as a port so the orchestrator can resolve cv_ids/history without owning
// storage).
type SessionStore interface {
	Get(ctx Context, sessionID string) (Session, error)
	Append(ctx Context, sessionID string, msg Message) error
}

// EvalLogRecord is one append-only telemetry entry (C15), matching the wire
// schema in §6.
type EvalLogRecord struct {
	TS                 string
	Query              string
	ResponseExcerpt     string
	Sources             []string
	Metrics             Metrics
	HallucinationCheck VerificationInfo
	GuardrailPassed    bool
	SessionID          string
	Mode               string
}

// EvalLog abstracts the append-only telemetry sink (C15).
type EvalLog interface {
	Append(ctx Context, rec EvalLogRecord) error
}

// IndexTaskPayload is the payload for the background bulk-ingestion task
// enqueued by IndexQueue.
type IndexTaskPayload struct {
	CVID     string
	Filename string
	FilePath string
}

// IndexQueue abstracts the background ingestion queue used by
// index_documents() for bulk/async CV ingestion.
type IndexQueue interface {
	EnqueueIndex(ctx Context, payload IndexTaskPayload) (string, error)
}

// ScoringProfile configures the weighted 0-100 scoring service (C14).
// Invariant: normalized weights sum to 1.0 +/- 1e-6 (§8).
type ScoringProfile struct {
	ID                   string             `json:"id"`
	Weights              map[string]float64 `json:"weights,omitempty"` // criterion -> normalized weight
	RequiredSkills       []string           `json:"required_skills,omitempty"`
	PreferredSkills      []string           `json:"preferred_skills,omitempty"`
	MinExperienceYears   float64            `json:"min_experience_years,omitempty"`
	IdealExperienceYears float64            `json:"ideal_experience_years,omitempty"`
	RequiredEducation    string             `json:"required_education,omitempty"`
	PreferredLocations   []string           `json:"preferred_locations,omitempty"`
}

// Normalize scales Weights so they sum to 1.0. No-op when the sum is already
// ~1 or when Weights is empty.
func (p *ScoringProfile) Normalize() {
	sum := 0.0
	for _, w := range p.Weights {
		sum += w
	}
	if sum <= 0 {
		return
	}
	for k, w := range p.Weights {
		p.Weights[k] = w / sum
	}
}
