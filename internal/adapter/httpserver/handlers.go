// Package httpserver contains HTTP handlers and middleware.
//
// It provides REST API endpoints for CV ingestion and retrieval-augmented
// question answering. The package follows clean architecture principles
// and provides a clear separation between HTTP concerns and business logic.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/cvqa/retrieval-engine/internal/adapter/sessionstore"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/scoring"
	"github.com/cvqa/retrieval-engine/internal/suggestion"
	"github.com/cvqa/retrieval-engine/internal/usecase"
)

// Server aggregates handler dependencies: the two usecase services that do
// the actual work, plus the readiness checks and session store the HTTP
// layer itself owns (§1 scope: session persistence and HTTP framing are
// ambient, not core).
type Server struct {
	Cfg         config.Config
	RAG         *usecase.RAGService
	Ingest      *usecase.IngestService
	Store       domain.VectorStore
	Sessions    *sessionstore.Memory
	Scoring     *scoring.Service
	StoreCheck  func(ctx context.Context) error
	QdrantCheck func(ctx context.Context) error
	TikaCheck   func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, rag *usecase.RAGService, ingest *usecase.IngestService, store domain.VectorStore, sessions *sessionstore.Memory, storeCheck, qdrantCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:         cfg,
		RAG:         rag,
		Ingest:      ingest,
		Store:       store,
		Sessions:    sessions,
		Scoring:     scoring.New(),
		StoreCheck:  storeCheck,
		QdrantCheck: qdrantCheck,
		TikaCheck:   tikaCheck,
	}
}

func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIMEFor(m string, filename string) bool {
	m = strings.ToLower(m)
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") {
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// IngestHandler accepts a single multipart CV file under the "cv" field,
// extracts, chunks, embeds, and stores it, and (when a session_id form
// field is present) binds the new CV into that session's pool.
func (s *Server) IngestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes*2)
		if err := r.ParseMultipartForm(maxBytes * 2); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": map[string]any{
					"code": "INVALID_ARGUMENT", "message": "payload too large", "details": map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		file, header, err := r.FormFile("cv")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: cv file required", domain.ErrInvalidArgument), map[string]string{"field": "cv"})
			return
		}
		defer func() { _ = file.Close() }()

		if !allowedExt(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"error": map[string]any{
				"code": "INVALID_ARGUMENT", "message": "unsupported media type (extension)", "details": map[string]any{"filename": header.Filename},
			}})
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		mime := mimetype.Detect(data)
		if !allowedMIMEFor(mime.String(), header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"error": map[string]any{
				"code": "INVALID_ARGUMENT", "message": "unsupported media type (content)", "details": map[string]any{"mime": mime.String(), "filename": header.Filename},
			}})
			return
		}

		tmp, err := os.CreateTemp("", "cvqa-upload-*")
		if err != nil {
			writeError(w, r, fmt.Errorf("op=IngestHandler: %w", domain.ErrInternal), nil)
			return
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			writeError(w, r, fmt.Errorf("op=IngestHandler: %w", domain.ErrInternal), nil)
			return
		}

		res, err := s.Ingest.IngestPath(r.Context(), header.Filename, tmp.Name())
		if err != nil {
			writeError(w, r, fmt.Errorf("ingest: %w", err), nil)
			return
		}

		if sessionID := r.FormValue("session_id"); sessionID != "" && s.Sessions != nil {
			s.Sessions.BindCV(sessionID, res.CVID)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"cv_id":          res.CVID,
			"filename":       res.Filename,
			"candidate_name": res.CandidateName,
			"chunk_count":    res.ChunkCount,
		})
	}
}

// DeleteCVHandler removes a CV and its chunks from the vector store.
func (s *Server) DeleteCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cvID := chi.URLParam(r, "id")
		if v := ValidateCVID(cvID); !v.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid cv_id", domain.ErrInvalidArgument), v.Errors)
			return
		}
		if err := s.Ingest.DeleteCV(r.Context(), cvID); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type queryRequestBody struct {
	Question  string   `json:"question"`
	SessionID string   `json:"session_id"`
	CVIDs     []string `json:"cv_ids"`
}

type queryResponseBody struct {
	domain.RAGResponse
	Suggestions []suggestion.Suggestion `json:"suggestions"`
}

// QueryHandler answers one question against the indexed CVs. When
// session_id is set and cv_ids is omitted, the session's bound CV pool and
// message history are used, so a client does not need to resend them on
// every turn.
func (s *Server) QueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req queryRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if v := ValidateQuestion(req.Question); !v.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid question", domain.ErrInvalidArgument), v.Errors)
			return
		}

		cvIDs := req.CVIDs
		var history []domain.Message
		if req.SessionID != "" && s.Sessions != nil {
			sess, err := s.Sessions.Get(r.Context(), req.SessionID)
			if err == nil {
				history = sess.Messages
				if len(cvIDs) == 0 {
					cvIDs = sess.CVIDs
				}
			}
		}

		totalCVs := len(cvIDs)
		if totalCVs == 0 {
			stats, err := s.Store.GetStats(r.Context())
			if err == nil {
				totalCVs = stats.TotalCVs
			}
		}

		resp, suggestions, err := s.RAG.Query(r.Context(), usecase.QueryRequest{
			Question:  req.Question,
			SessionID: req.SessionID,
			CVIDs:     cvIDs,
			History:   history,
			TotalCVs:  totalCVs,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		if req.SessionID != "" && s.Sessions != nil {
			_ = s.Sessions.Append(r.Context(), req.SessionID, domain.Message{Role: domain.RoleUser, Content: req.Question})
			_ = s.Sessions.Append(r.Context(), req.SessionID, domain.Message{Role: domain.RoleAssistant, Content: resp.Answer})
		}

		writeJSON(w, http.StatusOK, queryResponseBody{RAGResponse: resp, Suggestions: suggestions})
	}
}

type scoreRequestBody struct {
	CVID    string                `json:"cv_id"`
	Profile domain.ScoringProfile `json:"profile"`
}

// ScoreHandler runs the weighted 0-100 scoring service (C14) against an
// already-indexed CV's enriched metadata.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req scoreRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if v := ValidateCVID(req.CVID); !v.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid cv_id", domain.ErrInvalidArgument), v.Errors)
			return
		}

		metadata, filename, err := s.Store.GetMetadataByCVID(r.Context(), req.CVID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		result := s.Scoring.Score(req.Profile, metadata)
		writeJSON(w, http.StatusOK, map[string]any{
			"cv_id":    req.CVID,
			"filename": filename,
			"result":   result,
		})
	}
}

// StatsHandler reports a coarse view of indexed CV/chunk counts.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetStats(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"total_cvs": stats.TotalCVs, "total_chunks": stats.TotalChunks})
	}
}

// HealthzHandler is a liveness probe: it always reports OK once the process
// is serving requests at all.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler returns a readiness handler that probes the vector store,
// Qdrant, and Tika. A failing Tika probe is reported in the checks list but
// does not make the response 503.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		run := func(name string, fn func(context.Context) error) check {
			if fn == nil {
				return check{Name: name, OK: true}
			}
			if err := fn(ctx); err != nil {
				return check{Name: name, OK: false, Details: err.Error()}
			}
			return check{Name: name, OK: true}
		}

		checks := []check{
			run("vector_store", s.StoreCheck),
			run("qdrant", s.QdrantCheck),
			run("tika", s.TikaCheck),
		}

		ok := true
		for _, c := range checks {
			if !c.OK && c.Name != "tika" {
				ok = false
				break
			}
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
