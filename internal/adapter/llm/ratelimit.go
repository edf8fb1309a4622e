package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// openRouterKeyResponse is the shape of OpenRouter's GET /key endpoint
// (https://openrouter.ai/docs/api-reference/limits), decoded by
// RateLimitChecker.GetQuotaInfo. No HTTP endpoint, readiness included,
// calls the checker.
type openRouterKeyResponse struct {
	Data struct {
		Usage          float64  `json:"usage"`
		Limit          *float64 `json:"limit"`
		LimitRemaining *float64 `json:"limit_remaining"`
		IsFreeTier     bool     `json:"is_free_tier"`
	} `json:"data"`
}

// QuotaInfo summarizes an OpenRouter account's remaining credit.
type QuotaInfo struct {
	Limit      float64 // -1 when unlimited
	Usage      float64
	Remaining  float64 // -1 when unlimited
	IsFreeTier bool
}

// RateLimitChecker queries OpenRouter's key-info endpoint for quota
// visibility; it is read-only and never blocks a request, unlike the
// teacher's WaitForQuota variant.
type RateLimitChecker struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewRateLimitChecker builds a checker against baseURL (the OpenRouter API
// root) using apiKey for auth.
func NewRateLimitChecker(apiKey, baseURL string) *RateLimitChecker {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("ratelimit %s %s", r.Method, r.URL.Host)
		}),
	)
	return &RateLimitChecker{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second, Transport: transport},
	}
}

// GetQuotaInfo fetches the current account quota.
func (r *RateLimitChecker) GetQuotaInfo(ctx context.Context) (QuotaInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/key", nil)
	if err != nil {
		return QuotaInfo{}, fmt.Errorf("op=llm.GetQuotaInfo: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return QuotaInfo{}, fmt.Errorf("op=llm.GetQuotaInfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return QuotaInfo{}, fmt.Errorf("op=llm.GetQuotaInfo: status %d", resp.StatusCode)
	}

	var parsed openRouterKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return QuotaInfo{}, fmt.Errorf("op=llm.GetQuotaInfo: decode: %w", err)
	}

	info := QuotaInfo{Usage: parsed.Data.Usage, IsFreeTier: parsed.Data.IsFreeTier, Limit: -1, Remaining: -1}
	if parsed.Data.Limit != nil {
		info.Limit = *parsed.Data.Limit
	}
	if parsed.Data.LimitRemaining != nil {
		info.Remaining = *parsed.Data.LimitRemaining
	}
	return info, nil
}
