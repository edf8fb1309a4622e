package app

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/adapter/llm"
	"github.com/cvqa/retrieval-engine/internal/adapter/textextractor"
	"github.com/cvqa/retrieval-engine/internal/adapter/vectorstore"
	"github.com/cvqa/retrieval-engine/internal/chunker"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/usecase"
)

// BuildIngestService wires the extract -> chunk -> embed -> store path shared
// by the HTTP upload endpoint, the bulk-seed CLI (cmd/ragseed), and the
// background index consumer (cmd/worker), so all three ingest through the
// same adapters instead of duplicating factory calls.
func BuildIngestService(ctx domain.Context, cfg config.Config) (*usecase.IngestService, domain.VectorStore, error) {
	ragCfg, err := config.LoadRAGConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.BuildIngestService: rag config: %w", err)
	}

	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.BuildIngestService: vector store: %w", err)
	}

	generateClients := llm.New(cfg, cfg.GenerationModel)
	extractor := textextractor.New(cfg)
	chunk := chunker.New(ragCfg)

	ingest := usecase.NewIngestService(usecase.IngestDeps{
		Extractor: extractor,
		Chunker:   chunk,
		Embedder:  generateClients.RawEmbed,
		Store:     store,
	})
	return ingest, store, nil
}
