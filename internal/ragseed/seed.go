// Package ragseed provides the bulk CV ingestion CLI's core walk-and-ingest
// logic, driving cmd/ragseed.
//
// It walks a directory of CV files and feeds each one through
// usecase.IngestService, the same extract -> chunk -> embed -> store path
// the HTTP API's single-file upload uses.
package ragseed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/usecase"
)

// Result records the outcome of ingesting one file.
type Result struct {
	Path string
	usecase.IngestResult
	Err error
}

func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

// SeedDir walks dir (non-recursively by default scope matches a flat corpus
// drop folder) and ingests every file with a recognized CV extension,
// returning one Result per attempted file so the caller can report partial
// failures without aborting the whole batch.
func SeedDir(ctx domain.Context, ingest *usecase.IngestService, dir string) ([]Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("op=ragseed.SeedDir: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("op=ragseed.SeedDir: %w", err)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() || !allowedExt(entry.Name()) {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		res, err := ingest.IngestPath(ctx, entry.Name(), path)
		results = append(results, Result{Path: path, IngestResult: res, Err: err})
	}
	return results, nil
}
