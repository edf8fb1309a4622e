// Package domain defines core entities, ports, and domain-specific errors for
// the CV retrieval-and-answer pipeline.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels). Stages wrap these with fmt.Errorf("%w: ...")
// and callers inspect with errors.Is.
var (
	// ErrInvalidArgument marks input that fails validation at the edge
	// (empty query, empty extracted text, malformed ids).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a missing CV, chunk, or session.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrRateLimited marks a request throttled by our own limiter.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamTimeout marks a provider call that exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrUpstreamRateLimit marks a 429 from an upstream provider.
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	// ErrSchemaInvalid marks an LLM response that did not match the expected shape.
	ErrSchemaInvalid = errors.New("schema invalid")
	// ErrGuardrailRejected marks a query rejected by the guardrail (C5); not a failure.
	ErrGuardrailRejected = errors.New("guardrail rejected")
	// ErrNoRetrievalHits marks a search that returned zero results above threshold.
	ErrNoRetrievalHits = errors.New("no retrieval hits")
	// ErrInternal marks an unexpected internal failure.
	ErrInternal = errors.New("internal error")
)

// Context is a type alias to stdlib context.Context so domain ports read
// naturally without importing "context" at every call site that already has it.
type Context = context.Context
