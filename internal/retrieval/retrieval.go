// Package retrieval implements the adaptive vector-search strategy that
// sits in front of domain.VectorStore (C6).
package retrieval

import (
	"fmt"
	"math"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// largeCorpusThreshold is N above which the adaptive strategy switches into
// its large-corpus behavior (§4.5).
const largeCorpusThreshold = 100

const (
	rankingKSmallCorpus = 100
	rankingKLargeCorpus = 30
	thresholdLowering   = 0.10
	thresholdFloor      = 0.05
	noResultConfidence  = 0.8
	transientRetries    = 3
)

// Engine wraps an Embedder + VectorStore pair with the adaptive k/threshold/
// diversification strategy.
type Engine struct {
	embedder    domain.Embedder
	store       domain.VectorStore
	configuredK int
	baseThreshold float64
}

// New builds a retrieval Engine. configuredK/baseThreshold are the
// operator-configured defaults used for non-ranking queries against a
// large corpus.
func New(embedder domain.Embedder, store domain.VectorStore, configuredK int, baseThreshold float64) *Engine {
	return &Engine{embedder: embedder, store: store, configuredK: configuredK, baseThreshold: baseThreshold}
}

// Strategy is the resolved (k, threshold, diversifyByCV) triple for one query.
type Strategy struct {
	K             int
	Threshold     float64
	DiversifyByCV bool
}

func isRankingLike(qt domain.QueryType) bool {
	return qt == domain.QueryTypeRanking || qt == domain.QueryTypeComparison
}

// ResolveStrategy implements the adaptive table in §4.5: ranking/comparison
// queries always diversify with a corpus-size-scaled k; other query types
// diversify only below the large-corpus threshold, and the configured
// threshold is lowered (floor 0.05) once N crosses it to preserve recall.
func (e *Engine) ResolveStrategy(qt domain.QueryType, totalCVs int) Strategy {
	if isRankingLike(qt) {
		k := rankingKSmallCorpus
		if totalCVs > largeCorpusThreshold {
			k = rankingKLargeCorpus
		}
		return Strategy{K: k, Threshold: e.baseThreshold, DiversifyByCV: true}
	}

	if totalCVs < largeCorpusThreshold {
		return Strategy{K: totalCVs, Threshold: e.baseThreshold, DiversifyByCV: true}
	}

	return Strategy{
		K:             e.configuredK,
		Threshold:     math.Max(thresholdFloor, e.baseThreshold-thresholdLowering),
		DiversifyByCV: false,
	}
}

// Search embeds query, resolves the adaptive strategy from qt and the
// store's current CV count, and runs the vector search, scoped to cvIDs
// when non-empty. The embed and search calls are each retried up to 3 times
// with exponential backoff before their error is returned. It returns domain.ErrNoRetrievalHits when the search
// comes back empty so the orchestrator can take the canned no-result
// branch with confidence 0.8 (§4.5).
func (e *Engine) Search(ctx domain.Context, query string, qt domain.QueryType, cvIDs []string) ([]domain.SearchResult, Strategy, error) {
	stats, err := e.store.GetStats(ctx)
	if err != nil {
		return nil, Strategy{}, fmt.Errorf("op=retrieval.Search stage=stats: %w", err)
	}

	strategy := e.ResolveStrategy(qt, stats.TotalCVs)
	if strategy.K <= 0 {
		strategy.K = 1
	}

	var embedded domain.EmbeddingResult
	err = backoff.Retry(func() error {
		var embedErr error
		embedded, embedErr = e.embedder.EmbedQuery(ctx, query)
		return embedErr
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), transientRetries), ctx))
	if err != nil {
		return nil, strategy, fmt.Errorf("op=retrieval.Search stage=embed: %w", err)
	}
	if len(embedded.Embeddings) == 0 {
		return nil, strategy, fmt.Errorf("%w: embedder returned no vector", domain.ErrInternal)
	}

	var results []domain.SearchResult
	err = backoff.Retry(func() error {
		var searchErr error
		results, searchErr = e.store.Search(ctx, embedded.Embeddings[0], strategy.K, strategy.Threshold, cvIDs, strategy.DiversifyByCV)
		return searchErr
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), transientRetries), ctx))
	if err != nil {
		return nil, strategy, fmt.Errorf("op=retrieval.Search stage=search: %w", err)
	}
	results = domain.RescaleIfFused(results)
	if len(results) == 0 {
		return nil, strategy, fmt.Errorf("%w: query=%q", domain.ErrNoRetrievalHits, query)
	}
	return results, strategy, nil
}

// NoResultConfidence is the fixed confidence reported on the canned
// "no relevant information" response (§4.5).
const NoResultConfidence = noResultConfidence
