// Package vectorstore provides New, the DEFAULT_MODE-keyed factory that
// selects between the Qdrant-backed store (cloud) and the sqlite-vec-backed
// store (local), §6.
package vectorstore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/adapter/vectorstore/qdrant"
	"github.com/cvqa/retrieval-engine/internal/adapter/vectorstore/sqlitevec"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// embeddingDims must match the dimension of whichever Embedder is wired
// alongside this store: the stub embedder (local mode) and
// text-embedding-3-small (cloud mode, OpenAI/OpenRouter default) both
// produce vectors this store can size its schema/collection around.
const (
	localEmbeddingDims = 256
	cloudEmbeddingDims = 1536
)

// New builds the VectorStore for cfg.DefaultMode.
func New(ctx domain.Context, cfg config.Config) (domain.VectorStore, error) {
	if cfg.IsCloudMode() {
		store, err := qdrant.New(ctx, qdrant.Config{
			Host:           qdrantHost(cfg.QdrantURL),
			Port:           qdrantPort(cfg.QdrantURL),
			APIKey:         cfg.QdrantAPIKey,
			CollectionName: "cv_chunks",
			VectorSize:     cloudEmbeddingDims,
		})
		if err != nil {
			return nil, fmt.Errorf("op=vectorstore.New: %w", err)
		}
		return store, nil
	}

	store, err := sqlitevec.New(cfg.SQLiteVecPath, localEmbeddingDims)
	if err != nil {
		return nil, fmt.Errorf("op=vectorstore.New: %w", err)
	}
	return store, nil
}

// qdrantHost/qdrantPort split a QDRANT_URL like "http://localhost:6333"
// into the host/port pair the gRPC client dials; a bare "host:port" or
// "host" string (no scheme) is also accepted.
func qdrantHost(raw string) string {
	h, _ := splitQdrantURL(raw)
	return h
}

func qdrantPort(raw string) int {
	_, p := splitQdrantURL(raw)
	return p
}

func splitQdrantURL(raw string) (string, int) {
	const defaultPort = 6334 // Qdrant's gRPC port

	target := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		target = u.Host
	}
	host, portStr, found := strings.Cut(target, ":")
	if !found {
		return target, defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}
	return host, port
}
