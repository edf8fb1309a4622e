// Package sessionstore provides an in-process domain.SessionStore.
//
// Session persistence is an external collaborator per the component design
// (sessions are out of this repo's core scope) — this implementation is the
// minimal concrete adapter that makes the HTTP layer usable standalone,
// without requiring a caller to bring their own session backend. It is not
// durable: state is lost on restart, by design.
package sessionstore

import (
	"fmt"
	"sync"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// Memory implements domain.SessionStore with an in-memory map, guarded by a
// mutex (the teacher's own in-process caches follow the same shape — see
// internal/adapter/llm's embed cache).
type Memory struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

// NewMemory builds an empty session store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]domain.Session)}
}

// Get returns the session for sessionID, lazily creating an empty one (with
// no CVIDs and no history) the first time it is seen.
func (m *Memory) Get(_ domain.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, fmt.Errorf("op=sessionstore.Get: %w: empty session id", domain.ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	return domain.Session{SessionID: sessionID}, nil
}

// Append records msg onto sessionID's history, creating the session if it
// does not already exist.
func (m *Memory) Append(_ domain.Context, sessionID string, msg domain.Message) error {
	if sessionID == "" {
		return fmt.Errorf("op=sessionstore.Append: %w: empty session id", domain.ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = domain.Session{SessionID: sessionID}
	}
	s.Messages = append(s.Messages, msg)
	m.sessions[sessionID] = s
	return nil
}

// BindCV adds cvID to sessionID's CV pool, creating the session if needed.
// This is not part of domain.SessionStore (ingestion, not query-time
// resolution) so it is exposed only on the concrete type; the HTTP layer
// holds a *Memory directly rather than the narrower interface for this
// reason.
func (m *Memory) BindCV(sessionID, cvID string) {
	if sessionID == "" || cvID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = domain.Session{SessionID: sessionID}
	}
	for _, existing := range s.CVIDs {
		if existing == cvID {
			return
		}
	}
	s.CVIDs = append(s.CVIDs, cvID)
	m.sessions[sessionID] = s
}

var _ domain.SessionStore = (*Memory)(nil)
