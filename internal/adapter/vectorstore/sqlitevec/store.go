// Package sqlitevec implements domain.VectorStore on top of a local SQLite
// database with the sqlite-vec extension, for DEFAULT_MODE=local deployments
// that do not run a Qdrant instance (§6).
package sqlitevec

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func init() {
	sqlite_vec.Auto()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cv_chunks (
	chunk_id     TEXT PRIMARY KEY,
	cv_id        TEXT NOT NULL,
	chunk_index  INTEGER NOT NULL,
	section_type TEXT NOT NULL,
	content      TEXT NOT NULL,
	filename     TEXT NOT NULL,
	metadata     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cv_chunks_cv_id ON cv_chunks(cv_id);
`

// Store is a local, single-file VectorStore backed by sqlite-vec.
type Store struct {
	db  *sql.DB
	dim int
}

// New opens (or creates) the sqlite-vec database at path. dim is the
// embedding dimension used to size the vec0 virtual table.
func New(path string, dim int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("op=sqlitevec.New: creating dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("op=sqlitevec.New: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlitevec.New: ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlitevec.New: schema: %w", err)
	}
	vecDDL := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
		chunk_id TEXT PRIMARY KEY,
		embedding FLOAT[%d]
	)`, dim)
	if _, err := db.Exec(vecDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlitevec.New: vec schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, dim: dim}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// AddDocuments implements domain.VectorStore.
func (s *Store) AddDocuments(ctx domain.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("op=sqlitevec.AddDocuments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cv_chunks (chunk_id, cv_id, chunk_index, section_type, content, filename, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			content = excluded.content, metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("op=sqlitevec.AddDocuments: prepare chunk: %w", err)
	}
	defer func() { _ = chunkStmt.Close() }()

	vecStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("op=sqlitevec.AddDocuments: prepare vec: %w", err)
	}
	defer func() { _ = vecStmt.Close() }()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("op=sqlitevec.AddDocuments: marshal metadata: %w", err)
		}
		if _, err := chunkStmt.ExecContext(ctx, c.ChunkID, c.CVID, c.ChunkIndex, string(c.SectionType), c.Content, c.Filename, string(meta)); err != nil {
			return fmt.Errorf("op=sqlitevec.AddDocuments: insert chunk: %w", err)
		}
		if len(c.Embedding) > 0 {
			if _, err := vecStmt.ExecContext(ctx, c.ChunkID, serializeFloat32(c.Embedding)); err != nil {
				return fmt.Errorf("op=sqlitevec.AddDocuments: insert embedding: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("op=sqlitevec.AddDocuments: commit: %w", err)
	}
	return nil
}

// Search implements domain.VectorStore. When cvIDs is non-empty, results are
// filtered to that set; when diversifyByCV is true, no CV contributes more
// than ceil(k/len(cvIDs)) hits (§4.6 diversification rule).
func (s *Store) Search(ctx domain.Context, vector []float32, k int, threshold float64, cvIDs []string, diversifyByCV bool) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 1
	}
	// Over-fetch to allow post-filtering by cvIDs/threshold/diversification.
	fetchK := k * 4
	if fetchK < 20 {
		fetchK = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.chunk_id, v.distance, c.cv_id, c.content, c.filename, c.metadata, c.section_type
		FROM vec_chunks v
		JOIN cv_chunks c ON c.chunk_id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(vector), fetchK)
	if err != nil {
		return nil, fmt.Errorf("op=sqlitevec.Search: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	allow := map[string]bool{}
	for _, id := range cvIDs {
		allow[id] = true
	}

	var all []domain.SearchResult
	for rows.Next() {
		var chunkID, cvID, content, filename, metaJSON, sectionType string
		var distance float64
		if err := rows.Scan(&chunkID, &distance, &cvID, &content, &filename, &metaJSON, &sectionType); err != nil {
			return nil, fmt.Errorf("op=sqlitevec.Search: scan: %w", err)
		}
		if len(allow) > 0 && !allow[cvID] {
			continue
		}
		similarity := 1.0 - distance
		if similarity < threshold {
			continue
		}
		var meta domain.EnrichedMetadata
		_ = json.Unmarshal([]byte(metaJSON), &meta)
		all = append(all, domain.SearchResult{
			CVID: cvID, ChunkID: chunkID, Content: content,
			Metadata: meta, Similarity: similarity, Filename: filename,
			SectionType: domain.SectionType(sectionType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=sqlitevec.Search: rows: %w", err)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Similarity > all[j].Similarity })

	if !diversifyByCV || len(cvIDs) == 0 {
		if len(all) > k {
			all = all[:k]
		}
		return all, nil
	}

	perCVCap := (k + len(cvIDs) - 1) / len(cvIDs)
	perCVCount := map[string]int{}
	var diversified []domain.SearchResult
	for _, r := range all {
		if perCVCount[r.CVID] >= perCVCap {
			continue
		}
		diversified = append(diversified, r)
		perCVCount[r.CVID]++
		if len(diversified) >= k {
			break
		}
	}
	return diversified, nil
}

// GetStats implements domain.VectorStore.
func (s *Store) GetStats(ctx domain.Context) (domain.VectorStoreStats, error) {
	var totalCVs, totalChunks int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT cv_id) FROM cv_chunks`).Scan(&totalCVs); err != nil {
		return domain.VectorStoreStats{}, fmt.Errorf("op=sqlitevec.GetStats: cvs: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cv_chunks`).Scan(&totalChunks); err != nil {
		return domain.VectorStoreStats{}, fmt.Errorf("op=sqlitevec.GetStats: chunks: %w", err)
	}
	return domain.VectorStoreStats{TotalCVs: totalCVs, TotalChunks: totalChunks}, nil
}

// DeleteByCVID implements domain.VectorStore.
func (s *Store) DeleteByCVID(ctx domain.Context, cvID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("op=sqlitevec.DeleteByCVID: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vec_chunks WHERE chunk_id IN (SELECT chunk_id FROM cv_chunks WHERE cv_id = ?)
	`, cvID); err != nil {
		return fmt.Errorf("op=sqlitevec.DeleteByCVID: vec: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cv_chunks WHERE cv_id = ?`, cvID); err != nil {
		return fmt.Errorf("op=sqlitevec.DeleteByCVID: chunks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("op=sqlitevec.DeleteByCVID: commit: %w", err)
	}
	return nil
}

// GetMetadataByCVID implements domain.VectorStore.
func (s *Store) GetMetadataByCVID(ctx domain.Context, cvID string) (domain.EnrichedMetadata, string, error) {
	var filename, metaJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, metadata FROM cv_chunks WHERE cv_id = ? LIMIT 1
	`, cvID).Scan(&filename, &metaJSON)
	if err == sql.ErrNoRows {
		return domain.EnrichedMetadata{}, "", fmt.Errorf("op=sqlitevec.GetMetadataByCVID: %w: %s", domain.ErrNotFound, cvID)
	}
	if err != nil {
		return domain.EnrichedMetadata{}, "", fmt.Errorf("op=sqlitevec.GetMetadataByCVID: %w", err)
	}
	var meta domain.EnrichedMetadata
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return domain.EnrichedMetadata{}, "", fmt.Errorf("op=sqlitevec.GetMetadataByCVID: unmarshal: %w", err)
	}
	return meta, filename, nil
}

// Ping implements domain.VectorStore.
func (s *Store) Ping(ctx domain.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("op=sqlitevec.Ping: %w", err)
	}
	return nil
}

// serializeFloat32 converts a float32 slice to little-endian bytes, the wire
// format sqlite-vec expects for a FLOAT[n] column.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
