package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/cvqa/retrieval-engine/internal/adapter/httpserver"
	"github.com/cvqa/retrieval-engine/internal/adapter/llm"
	"github.com/cvqa/retrieval-engine/internal/adapter/reranker"
	"github.com/cvqa/retrieval-engine/internal/adapter/sessionstore"
	"github.com/cvqa/retrieval-engine/internal/adapter/suggestioncache"
	"github.com/cvqa/retrieval-engine/internal/adapter/textextractor"
	"github.com/cvqa/retrieval-engine/internal/adapter/vectorstore"
	"github.com/cvqa/retrieval-engine/internal/chunker"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/evallog"
	"github.com/cvqa/retrieval-engine/internal/guardrail"
	"github.com/cvqa/retrieval-engine/internal/retrieval"
	"github.com/cvqa/retrieval-engine/internal/service/ratelimiter"
	"github.com/cvqa/retrieval-engine/internal/suggestion"
	"github.com/cvqa/retrieval-engine/internal/usecase"
	"github.com/cvqa/retrieval-engine/internal/verifier"
)

// Build constructs every collaborator named in SPEC_FULL.md's package map
// and assembles the HTTP server, following the teacher's pattern of one
// explicit wiring function called once from main rather than package-level
// singletons. The returned limiter is nil when REDIS_URL is empty or cannot
// be parsed; no connection is attempted here (BuildRouter falls back to the
// in-memory limiter when it's nil).
func Build(ctx context.Context, cfg config.Config) (*httpserver.Server, *ratelimiter.RedisLuaLimiter, error) {
	ragCfg, err := config.LoadRAGConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.Build: rag config: %w", err)
	}

	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.Build: vector store: %w", err)
	}

	understandClients := llm.New(cfg, cfg.UnderstandingModel)
	rerankClients := llm.New(cfg, cfg.RerankModel)
	generateClients := llm.New(cfg, cfg.GenerationModel)
	verifyClients := llm.New(cfg, cfg.VerificationModel)

	chunk := chunker.New(ragCfg)
	extractor := textextractor.New(cfg)

	evalLog, err := evallog.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.Build: eval log: %w", err)
	}

	rdb := newRedisClient(cfg.RedisURL)

	var emittedStore suggestion.EmittedStore
	var limiter *ratelimiter.RedisLuaLimiter
	if rdb != nil {
		emittedStore = suggestioncache.New(rdb)
		limiter = ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			"default": ratelimiter.NewBucketConfigFromPerMinute(cfg.RateLimitPerMin),
		})
	}

	rag := usecase.New(usecase.Deps{
		Understander: usecase.NewQueryUnderstander(understandClients.Chat),
		Guardrail:    guardrail.New(ragCfg),
		Retrieval:    retrieval.New(generateClients.Embed, store, cfg.RetrievalK, cfg.RetrievalScoreThreshold),
		Reranker:     reranker.New(rerankClients.Chat, cfg.RerankModel),
		Generator:    usecase.NewGenerator(generateClients.Chat),
		Verifier:     verifier.New(verifyClients.Chat),
		Suggestions:  suggestion.New(ragCfg.SuggestionSeeds, emittedStore),
		EvalLog:      evalLog,
		Mode:         cfg.DefaultMode,
		Timeouts:     usecase.TimeoutsFromConfig(cfg),
	})

	ingest := usecase.NewIngestService(usecase.IngestDeps{
		Extractor: extractor,
		Chunker:   chunk,
		Embedder:  generateClients.RawEmbed,
		Store:     store,
	})

	sessions := sessionstore.NewMemory()
	storeCheck, qdrantCheck, tikaCheck := BuildReadinessChecks(cfg, store)

	srv := httpserver.NewServer(cfg, rag, ingest, store, sessions, storeCheck, qdrantCheck, tikaCheck)
	return srv, limiter, nil
}

// newRedisClient returns nil when rawURL is empty, so Redis-backed
// collaborators (rate limiter, suggestion dedup) are opt-in rather than a
// hard startup dependency: every non-local deployment is expected to set
// REDIS_URL, but the stack still runs single-instance without it.
func newRedisClient(rawURL string) *redis.Client {
	if strings.TrimSpace(rawURL) == "" {
		return nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil
	}
	return redis.NewClient(opts)
}
