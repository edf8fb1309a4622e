package qdrant

import (
	"encoding/json"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// marshalMetadata serializes EnrichedMetadata to JSON for storage in a single
// Qdrant payload string field, since the payload schema is otherwise flat.
func marshalMetadata(m domain.EnrichedMetadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalMetadata(s string, out *domain.EnrichedMetadata) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
