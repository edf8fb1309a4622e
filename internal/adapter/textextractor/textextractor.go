// Package textextractor selects the domain.TextExtractor implementation for
// the configured deployment mode (§6).
package textextractor

import (
	"github.com/cvqa/retrieval-engine/internal/adapter/textextractor/localpdf"
	"github.com/cvqa/retrieval-engine/internal/adapter/textextractor/tika"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// fallbackExtractor tries a primary extractor and falls back to a secondary
// one whenever the primary returns an error, so a local-mode deployment can
// still extract .docx when a Tika server happens to be reachable without
// requiring it.
type fallbackExtractor struct {
	primary, secondary domain.TextExtractor
}

func (f fallbackExtractor) ExtractPath(ctx domain.Context, fileName, path string) (string, error) {
	text, err := f.primary.ExtractPath(ctx, fileName, path)
	if err == nil || f.secondary == nil {
		return text, err
	}
	return f.secondary.ExtractPath(ctx, fileName, path)
}

// New builds the extractor for cfg.DefaultMode: cloud mode always goes
// through the Tika server at cfg.TikaURL; local mode extracts .pdf in-process
// via localpdf and retries any failed extraction against the Tika server at
// cfg.TikaURL (the default points at a docker-compose sidecar that may or may
// not be running locally).
func New(cfg config.Config) domain.TextExtractor {
	tikaClient := tika.New(cfg.TikaURL)
	if cfg.IsCloudMode() {
		return tikaClient
	}
	return fallbackExtractor{primary: localpdf.New(), secondary: tikaClient}
}
