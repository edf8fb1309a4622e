package evallog

import (
	"fmt"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

// New builds the domain.EvalLog implementation selected by cfg.DefaultMode:
// a local append-only file in local mode, a Supabase table in cloud mode
// (§6).
func New(cfg config.Config) (domain.EvalLog, error) {
	if cfg.IsCloudMode() {
		w, err := NewCloudWriter(CloudConfig{
			BaseURL:    cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
		})
		if err != nil {
			return nil, fmt.Errorf("op=evallog.New: %w", err)
		}
		return w, nil
	}

	w, err := NewLocalWriter(cfg.EvalLogPath)
	if err != nil {
		return nil, fmt.Errorf("op=evallog.New: %w", err)
	}
	return w, nil
}
