package evallog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// CloudWriter implements domain.EvalLog against a Supabase table via its
// auto-generated PostgREST endpoint (`POST /rest/v1/<table>`), the cloud-mode
// counterpart to LocalWriter (§6 "managed store"). No library in the example
// pack talks to Supabase/PostgREST, so this issues the REST call directly
// with net/http — justified in DESIGN.md; the retry wrapper reuses the
// cenkalti/backoff pattern the teacher's LLM client (internal/adapter/llm/real)
// already applies to outbound HTTP calls.
type CloudWriter struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	table      string
	maxRetries int
}

// CloudConfig configures a CloudWriter.
type CloudConfig struct {
	BaseURL        string // e.g. https://<project>.supabase.co
	ServiceKey     string
	Table          string // defaults to "eval_log"
	RequestTimeout time.Duration
	MaxRetries     int
}

// NewCloudWriter builds a CloudWriter. cfg.Table defaults to "eval_log",
// cfg.RequestTimeout to 10s, cfg.MaxRetries to 3.
func NewCloudWriter(cfg CloudConfig) (*CloudWriter, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("op=evallog.NewCloudWriter: %w: SUPABASE_URL/SUPABASE_SERVICE_KEY required", domain.ErrInvalidArgument)
	}
	if cfg.Table == "" {
		cfg.Table = "eval_log"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &CloudWriter{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		table:      cfg.Table,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Append implements domain.EvalLog, inserting one row via PostgREST.
func (w *CloudWriter) Append(ctx domain.Context, rec domain.EvalLogRecord) error {
	body, err := json.Marshal(toRecord(rec))
	if err != nil {
		return fmt.Errorf("op=evallog.Append: %w", err)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(w.maxRetries))
	err = backoff.Retry(func() error {
		callErr := w.post(ctx, body)
		if callErr != nil && isNonRetryable(callErr) {
			return backoff.Permanent(callErr)
		}
		return callErr
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("op=evallog.Append: %w", err)
	}
	return nil
}

// httpStatusError carries the response status so retry logic can distinguish
// client errors (non-retryable) from server errors/429 (retryable) without
// parsing strings.
type httpStatusError struct{ status int }

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("supabase eval_log insert: status %d", e.status)
}

func (w *CloudWriter) post(ctx context.Context, body []byte) error {
	url := fmt.Sprintf("%s/rest/v1/%s", w.baseURL, w.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", w.serviceKey)
	req.Header.Set("Authorization", "Bearer "+w.serviceKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &httpStatusError{status: resp.StatusCode}
}

// isNonRetryable reports client errors other than 429 (rate limit), which
// retrying would not fix.
func isNonRetryable(err error) bool {
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.status >= 400 && statusErr.status < 500 && statusErr.status != http.StatusTooManyRequests
}

var _ domain.EvalLog = (*CloudWriter)(nil)
