package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/scoring"
)

type scoreFakeStore struct {
	metadata domain.EnrichedMetadata
	filename string
	err      error
}

func (scoreFakeStore) AddDocuments(domain.Context, []domain.Chunk) error { return nil }
func (scoreFakeStore) Search(domain.Context, []float32, int, float64, []string, bool) ([]domain.SearchResult, error) {
	return nil, nil
}
func (scoreFakeStore) GetStats(domain.Context) (domain.VectorStoreStats, error) {
	return domain.VectorStoreStats{}, nil
}
func (scoreFakeStore) DeleteByCVID(domain.Context, string) error { return nil }
func (s scoreFakeStore) GetMetadataByCVID(domain.Context, string) (domain.EnrichedMetadata, string, error) {
	return s.metadata, s.filename, s.err
}
func (scoreFakeStore) Ping(domain.Context) error { return nil }

func newScoreTestServer(store scoreFakeStore) *Server {
	return &Server{Store: store, Scoring: scoring.New()}
}

func doScoreRequest(t *testing.T, srv *Server, body scoreRequestBody) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	r.Post("/v1/score", srv.ScoreHandler())
	r.ServeHTTP(rec, req)
	return rec
}

func TestScoreHandler_RejectsInvalidCVID(t *testing.T) {
	srv := newScoreTestServer(scoreFakeStore{})
	rec := doScoreRequest(t, srv, scoreRequestBody{CVID: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreHandler_ReturnsNotFoundForMissingCV(t *testing.T) {
	srv := newScoreTestServer(scoreFakeStore{err: domain.ErrNotFound})
	rec := doScoreRequest(t, srv, scoreRequestBody{CVID: "cv_missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScoreHandler_ScoresAnIndexedCV(t *testing.T) {
	srv := newScoreTestServer(scoreFakeStore{
		filename: "alice.pdf",
		metadata: domain.EnrichedMetadata{
			Skills:               []string{"go", "kubernetes"},
			TotalExperienceYears: 8,
		},
	})
	rec := doScoreRequest(t, srv, scoreRequestBody{
		CVID: "cv_alice",
		Profile: domain.ScoringProfile{
			ID:                 "backend-eng",
			RequiredSkills:     []string{"go"},
			MinExperienceYears: 3,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "cv_alice", out["cv_id"])
	assert.Equal(t, "alice.pdf", out["filename"])
	result, ok := out["result"].(map[string]any)
	require.True(t, ok)
	assert.Greater(t, result["overall"], float64(0))
}
