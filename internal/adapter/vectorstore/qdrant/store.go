// Package qdrant implements domain.VectorStore against a Qdrant collection
// via the typed gRPC client, for DEFAULT_MODE=cloud deployments (§6).
package qdrant

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

const metadataPayloadKey = "metadata_json"
const contentPayloadKey = "content"
const cvIDPayloadKey = "cv_id"
const sectionTypePayloadKey = "section_type"
const chunkIndexPayloadKey = "chunk_index"
const filenamePayloadKey = "filename"

// Store implements domain.VectorStore backed by a Qdrant collection.
type Store struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// Config configures the Qdrant-backed store.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	CollectionName string
	VectorSize     uint64
}

// New dials Qdrant and ensures the collection exists, creating it with
// cosine distance if missing.
func New(ctx domain.Context, cfg Config) (*Store, error) {
	clientCfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	}
	client, err := qdrant.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("op=qdrant.New: dial: %w", err)
	}

	store := &Store{client: client, collectionName: cfg.CollectionName, vectorSize: cfg.VectorSize}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureCollection(ctx domain.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("op=qdrant.ensureCollection: exists: %w", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("op=qdrant.ensureCollection: create: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error { return s.client.Close() }

// AddDocuments implements domain.VectorStore.
func (s *Store) AddDocuments(ctx domain.Context, chunks []domain.Chunk) error {
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		metaJSON, err := marshalMetadata(c.Metadata)
		if err != nil {
			return fmt.Errorf("op=qdrant.AddDocuments: marshal metadata: %w", err)
		}
		payload, err := qdrant.TryValueMap(map[string]any{
			cvIDPayloadKey:        c.CVID,
			chunkIndexPayloadKey:  c.ChunkIndex,
			sectionTypePayloadKey: string(c.SectionType),
			contentPayloadKey:     c.Content,
			filenamePayloadKey:    c.Filename,
			metadataPayloadKey:    metaJSON,
		})
		if err != nil {
			return fmt.Errorf("op=qdrant.AddDocuments: payload: %w", err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(c.ChunkID),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: payload,
		})
	}
	if len(points) == 0 {
		return nil
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("op=qdrant.AddDocuments: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search implements domain.VectorStore, with diversification applied after
// the Qdrant query returns (Qdrant itself has no per-group cap primitive
// that maps cleanly onto ceil(k/len(cvIDs))).
func (s *Store) Search(ctx domain.Context, vector []float32, k int, threshold float64, cvIDs []string, diversifyByCV bool) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 1
	}
	fetchLimit := uint64(k * 4) //nolint:gosec // k is bounded by RETRIEVAL_K config
	if fetchLimit < 20 {
		fetchLimit = 20
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &fetchLimit,
		ScoreThreshold: float32Ptr(float32(threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(cvIDs) > 0 {
		query.Filter = &qdrant.Filter{
			Should: make([]*qdrant.Condition, 0, len(cvIDs)),
		}
		for _, id := range cvIDs {
			query.Filter.Should = append(query.Filter.Should, qdrant.NewMatch(cvIDPayloadKey, id))
		}
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("op=qdrant.Search: query: %w", err)
	}

	all := make([]domain.SearchResult, 0, len(scored))
	for _, p := range scored {
		all = append(all, resultFromPoint(p))
	}

	if !diversifyByCV || len(cvIDs) == 0 {
		if len(all) > k {
			all = all[:k]
		}
		return all, nil
	}

	perCVCap := (k + len(cvIDs) - 1) / len(cvIDs)
	perCVCount := map[string]int{}
	diversified := make([]domain.SearchResult, 0, k)
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

func resultFromPoint(p *qdrant.ScoredPoint) domain.SearchResult {
	payload := p.GetPayload()
	var chunkID string
	if id := p.GetId(); id != nil {
		chunkID = id.GetUuid()
	}
	var meta domain.EnrichedMetadata
	if v, ok := payload[metadataPayloadKey]; ok {
		_ = unmarshalMetadata(v.GetStringValue(), &meta)
	}
	return domain.SearchResult{
		CVID:        payload[cvIDPayloadKey].GetStringValue(),
		ChunkID:     chunkID,
		Content:     payload[contentPayloadKey].GetStringValue(),
		Metadata:    meta,
		Similarity:  float64(p.GetScore()),
		Filename:    payload[filenamePayloadKey].GetStringValue(),
		SectionType: domain.SectionType(payload[sectionTypePayloadKey].GetStringValue()),
	}
}

// GetStats implements domain.VectorStore.
func (s *Store) GetStats(ctx domain.Context) (domain.VectorStoreStats, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		return domain.VectorStoreStats{}, fmt.Errorf("op=qdrant.GetStats: %w", err)
	}
	totalChunks := int(info.GetPointsCount()) //nolint:gosec // bounded by corpus size
	cvIDs, err := s.distinctCVIDs(ctx)
	if err != nil {
		return domain.VectorStoreStats{}, err
	}
	return domain.VectorStoreStats{TotalCVs: len(cvIDs), TotalChunks: totalChunks}, nil
}

// distinctCVIDs scrolls the collection to count distinct cv_id values. Qdrant
// has no native DISTINCT aggregate over payload fields, so this scrolls
// payload-only batches, same scan pattern the teacher uses for readiness
// checks (internal/app/qdrant.go).
func (s *Store) distinctCVIDs(ctx domain.Context) (map[string]struct{}, error) {
	seen := map[string]struct{}{}
	var offset *qdrant.PointId
	for {
		limit := uint32(256)
		resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collectionName,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return nil, fmt.Errorf("op=qdrant.distinctCVIDs: scroll: %w", err)
		}
		for _, pt := range resp {
			if v, ok := pt.GetPayload()[cvIDPayloadKey]; ok {
				seen[v.GetStringValue()] = struct{}{}
			}
		}
		if len(resp) == 0 {
			break
		}
		offset = resp[len(resp)-1].GetId()
		if len(resp) < 256 {
			break
		}
	}
	return seen, nil
}

// DeleteByCVID implements domain.VectorStore.
func (s *Store) DeleteByCVID(ctx domain.Context, cvID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(cvIDPayloadKey, cvID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("op=qdrant.DeleteByCVID: %w", err)
	}
	return nil
}

// GetMetadataByCVID implements domain.VectorStore by scrolling the first
// matching point's payload (every chunk of a CV carries the same CV-level
// metadata, so any single match is sufficient).
func (s *Store) GetMetadataByCVID(ctx domain.Context, cvID string) (domain.EnrichedMetadata, string, error) {
	limit := uint32(1)
	resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collectionName,
		Limit:          &limit,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(cvIDPayloadKey, cvID)},
		},
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(false),
	})
	if err != nil {
		return domain.EnrichedMetadata{}, "", fmt.Errorf("op=qdrant.GetMetadataByCVID: scroll: %w", err)
	}
	if len(resp) == 0 {
		return domain.EnrichedMetadata{}, "", fmt.Errorf("op=qdrant.GetMetadataByCVID: %w: %s", domain.ErrNotFound, cvID)
	}
	payload := resp[0].GetPayload()
	var meta domain.EnrichedMetadata
	if v, ok := payload[metadataPayloadKey]; ok {
		_ = unmarshalMetadata(v.GetStringValue(), &meta)
	}
	return meta, payload[filenamePayloadKey].GetStringValue(), nil
}

// Ping implements domain.VectorStore.
func (s *Store) Ping(ctx domain.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("op=qdrant.Ping: %w", err)
	}
	return nil
}

func float32Ptr(f float32) *float32 { return &f }
