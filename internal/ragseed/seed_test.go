package ragseed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/chunker"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/usecase"
)

type fakeExtractor struct{}

func (fakeExtractor) ExtractPath(_ domain.Context, _, path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedTexts(_ domain.Context, texts []string) (domain.EmbeddingResult, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0.5}
	}
	return domain.EmbeddingResult{Embeddings: out}, nil
}

func (fakeEmbedder) EmbedQuery(_ domain.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embeddings: [][]float32{{0, 0}}}, nil
}

type fakeStore struct{ stored []domain.Chunk }

func (s *fakeStore) AddDocuments(_ domain.Context, chunks []domain.Chunk) error {
	s.stored = append(s.stored, chunks...)
	return nil
}
func (s *fakeStore) Search(domain.Context, []float32, int, float64, []string, bool) ([]domain.SearchResult, error) {
	return nil, nil
}
func (s *fakeStore) GetStats(domain.Context) (domain.VectorStoreStats, error) {
	return domain.VectorStoreStats{}, nil
}
func (s *fakeStore) DeleteByCVID(domain.Context, string) error { return nil }
func (s *fakeStore) GetMetadataByCVID(domain.Context, string) (domain.EnrichedMetadata, string, error) {
	return domain.EnrichedMetadata{}, "", nil
}
func (s *fakeStore) Ping(domain.Context) error { return nil }

func newTestIngestService(t *testing.T, store *fakeStore) *usecase.IngestService {
	t.Helper()
	return usecase.NewIngestService(usecase.IngestDeps{
		Extractor: fakeExtractor{},
		Chunker:   chunker.New(config.LoadRAGConfigOrDefault()),
		Embedder:  fakeEmbedder{},
		Store:     store,
	})
}

func TestSeedDir_IngestsEveryRecognizedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.txt"), []byte("Alice Smith\nSenior backend engineer with 8 years of Go and Kubernetes experience."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob.txt"), []byte("Bob Jones\nFrontend engineer skilled in React and TypeScript."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not a cv"), 0o600))

	store := &fakeStore{}
	ingest := newTestIngestService(t, store)

	results, err := SeedDir(context.Background(), ingest, dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotEmpty(t, r.CVID)
	}
	require.NotEmpty(t, store.stored)
}

func TestSeedDir_EmptyDirReturnsNoResults(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{}
	ingest := newTestIngestService(t, store)

	results, err := SeedDir(context.Background(), ingest, dir)
	require.NoError(t, err)
	require.Empty(t, results)
}
