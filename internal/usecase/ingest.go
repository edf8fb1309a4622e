package usecase

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cvqa/retrieval-engine/internal/chunker"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// IngestResult summarizes one CV's ingestion, for the HTTP response and the
// bulk-ingestion CLI's progress reporting.
type IngestResult struct {
	CVID          string
	Filename      string
	CandidateName string
	ChunkCount    int
}

// IngestService drives extract -> chunk -> embed -> store for one CV (C2 +
// C1's write side). It is the ingestion counterpart to RAGService: where
// RAGService answers questions about already-indexed CVs, IngestService puts
// them there in the first place.
type IngestService struct {
	extractor domain.TextExtractor
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	store     domain.VectorStore
}

// IngestDeps bundles IngestService's collaborators.
type IngestDeps struct {
	Extractor domain.TextExtractor
	Chunker   *chunker.Chunker
	Embedder  domain.Embedder // should be the uncached RawEmbed client; bulk chunk text is never repeated across calls
	Store     domain.VectorStore
}

// NewIngestService builds an IngestService from its collaborators.
func NewIngestService(d IngestDeps) *IngestService {
	return &IngestService{extractor: d.Extractor, chunker: d.Chunker, embedder: d.Embedder, store: d.Store}
}

var cvIDEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Weak random is sufficient for ULID entropy.

// IngestPath extracts text from path (named filename for extension/format
// detection), chunks it, embeds every chunk, and upserts the result into the
// vector store under a freshly minted CV id.
func (s *IngestService) IngestPath(ctx domain.Context, filename, path string) (IngestResult, error) {
	text, err := s.extractor.ExtractPath(ctx, filename, path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("op=usecase.IngestPath: extract: %w", err)
	}
	return s.ingestText(ctx, filename, text)
}

// IngestText chunks and embeds text already extracted by the caller (the
// HTTP handler extracts from an uploaded temp file itself, since the
// extractor port takes a path rather than a reader).
func (s *IngestService) IngestText(ctx domain.Context, filename, text string) (IngestResult, error) {
	return s.ingestText(ctx, filename, text)
}

func (s *IngestService) ingestText(ctx domain.Context, filename, text string) (IngestResult, error) {
	cvID := newCVID()
	chunks, candidateName, err := s.chunker.Chunk(cvID, filename, text)
	if err != nil {
		return IngestResult{}, fmt.Errorf("op=usecase.IngestPath: chunk: %w", err)
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	embeds, err := s.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return IngestResult{}, fmt.Errorf("op=usecase.IngestPath: embed: %w", err)
	}
	if len(embeds.Embeddings) != len(chunks) {
		return IngestResult{}, fmt.Errorf("op=usecase.IngestPath: %w: embedder returned %d vectors for %d chunks", domain.ErrInternal, len(embeds.Embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeds.Embeddings[i]
	}

	if err := s.store.AddDocuments(ctx, chunks); err != nil {
		return IngestResult{}, fmt.Errorf("op=usecase.IngestPath: store: %w", err)
	}

	return IngestResult{CVID: cvID, Filename: filename, CandidateName: candidateName, ChunkCount: len(chunks)}, nil
}

// DeleteCV removes a CV and all of its chunks from the vector store.
func (s *IngestService) DeleteCV(ctx domain.Context, cvID string) error {
	if strings.TrimSpace(cvID) == "" {
		return fmt.Errorf("op=usecase.DeleteCV: %w: empty cv id", domain.ErrInvalidArgument)
	}
	if err := s.store.DeleteByCVID(ctx, cvID); err != nil {
		return fmt.Errorf("op=usecase.DeleteCV: %w", err)
	}
	return nil
}

func newCVID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), cvIDEntropy)
	if err != nil {
		return fmt.Sprintf("cv_%d", time.Now().UnixNano())
	}
	return "cv_" + strings.ToLower(id.String())
}
