// Package evallog implements the append-only per-query telemetry sink (C15):
// one JSON object per query, written either to a local file or to a Supabase
// table, selected by DEFAULT_MODE.
package evallog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// record is the on-disk/wire shape for one EvalLogRecord, matching the §6
// schema: {ts, query, response_excerpt, sources[], metrics{}, hallucination_check{}, guardrail_passed, session_id, mode}.
type record struct {
	TS                 string                 `json:"ts"`
	Query              string                 `json:"query"`
	ResponseExcerpt    string                 `json:"response_excerpt"`
	Sources            []string               `json:"sources"`
	Metrics            domain.Metrics         `json:"metrics"`
	HallucinationCheck domain.VerificationInfo `json:"hallucination_check"`
	GuardrailPassed    bool                   `json:"guardrail_passed"`
	SessionID          string                 `json:"session_id"`
	Mode               string                 `json:"mode"`
}

func toRecord(rec domain.EvalLogRecord) record {
	return record{
		TS:                 rec.TS,
		Query:              rec.Query,
		ResponseExcerpt:    rec.ResponseExcerpt,
		Sources:            rec.Sources,
		Metrics:            rec.Metrics,
		HallucinationCheck: rec.HallucinationCheck,
		GuardrailPassed:    rec.GuardrailPassed,
		SessionID:          rec.SessionID,
		Mode:               rec.Mode,
	}
}

// LocalWriter implements domain.EvalLog by appending one JSON line per record
// to a local file, guarded by a mutex so concurrent query() calls never
// interleave their writes. Grounded on the pack's FileWriter append-mode idiom
// (Tangerg-lynx/ai/core/writer/file.go: os.O_CREATE|os.O_WRONLY|os.O_APPEND,
// reopened per write rather than held open).
type LocalWriter struct {
	mu   sync.Mutex
	path string
}

// NewLocalWriter builds a LocalWriter, creating the parent directory if
// needed.
func NewLocalWriter(path string) (*LocalWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("op=evallog.NewLocalWriter: %w: empty path", domain.ErrInvalidArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("op=evallog.NewLocalWriter: %w", err)
		}
	}
	return &LocalWriter{path: path}, nil
}

// Append implements domain.EvalLog.
func (w *LocalWriter) Append(_ domain.Context, rec domain.EvalLogRecord) error {
	line, err := json.Marshal(toRecord(rec))
	if err != nil {
		return fmt.Errorf("op=evallog.Append: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("op=evallog.Append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("op=evallog.Append: %w", err)
	}
	return nil
}

var _ domain.EvalLog = (*LocalWriter)(nil)
