package sessionstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestGet_UnknownSessionReturnsEmptySession(t *testing.T) {
	m := NewMemory()
	s, err := m.Get(context.Background(), "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "sess_1", s.SessionID)
	assert.Empty(t, s.CVIDs)
	assert.Empty(t, s.Messages)
}

func TestGet_RejectsEmptyID(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAppend_AccumulatesHistory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Append(ctx, "sess_1", domain.Message{Role: domain.RoleUser, Content: "hi"}))
	require.NoError(t, m.Append(ctx, "sess_1", domain.Message{Role: domain.RoleAssistant, Content: "hello"}))

	s, err := m.Get(ctx, "sess_1")
	require.NoError(t, err)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "hi", s.Messages[0].Content)
}

func TestBindCV_DeduplicatesAndCreatesSession(t *testing.T) {
	m := NewMemory()
	m.BindCV("sess_1", "cv_a")
	m.BindCV("sess_1", "cv_a")
	m.BindCV("sess_1", "cv_b")

	s, err := m.Get(context.Background(), "sess_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cv_a", "cv_b"}, s.CVIDs)
}
