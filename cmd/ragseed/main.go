// Command ragseed bulk-ingests a directory of CV files into the vector
// store, driving the same extract -> chunk -> embed -> store path as the
// HTTP API's single-file upload endpoint.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/cvqa/retrieval-engine/internal/app"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/ragseed"
)

func main() {
	dir := flag.String("dir", "./seed-data", "directory of CV files to ingest")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	ingest, _, err := app.BuildIngestService(ctx, cfg)
	if err != nil {
		slog.Error("wiring failed", slog.Any("error", err))
		os.Exit(1)
	}

	results, err := ragseed.SeedDir(ctx, ingest, *dir)
	if err != nil {
		slog.Error("seed walk failed", slog.Any("error", err))
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error("ingest failed", slog.String("path", r.Path), slog.Any("error", r.Err))
			continue
		}
		slog.Info("ingested", slog.String("path", r.Path), slog.String("cv_id", r.CVID), slog.Int("chunks", r.ChunkCount))
	}

	slog.Info("seed run complete", slog.Int("total", len(results)), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}
