// Package redpanda provides the Kafka/Redpanda-backed domain.IndexQueue used
// for background bulk re-embedding (cmd/worker), the async counterpart to
// the HTTP API's synchronous ingestion path.
package redpanda

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

var taskIDEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Weak random is sufficient for ULID entropy.

// TopicIndex is the topic carrying bulk CV ingestion tasks.
const TopicIndex = "cv-index-tasks"

// TopicIndexDLQ receives tasks whose retries were exhausted.
const TopicIndexDLQ = "cv-index-tasks-dlq"

// Producer implements domain.IndexQueue against a Kafka/Redpanda topic.
type Producer struct {
	client *kgo.Client
}

// NewProducer dials brokers and returns a ready-to-use Producer.
func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w: no seed brokers configured", domain.ErrInvalidArgument)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w", err)
	}
	return &Producer{client: client}, nil
}

// EnqueueIndex publishes payload to TopicIndex, keyed by a freshly minted
// task ID, and returns that ID for the caller to track.
func (p *Producer) EnqueueIndex(ctx domain.Context, payload domain.IndexTaskPayload) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), taskIDEntropy)
	if err != nil {
		return "", fmt.Errorf("op=redpanda.EnqueueIndex: ulid: %w", err)
	}
	taskID := "idx_" + strings.ToLower(id.String())

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("op=redpanda.EnqueueIndex: marshal: %w", err)
	}

	record := &kgo.Record{Topic: TopicIndex, Key: []byte(taskID), Value: body}
	result := p.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return "", fmt.Errorf("op=redpanda.EnqueueIndex: produce: %w", err)
	}
	return taskID, nil
}

// Close releases the underlying client.
func (p *Producer) Close() { p.client.Close() }

var _ domain.IndexQueue = (*Producer)(nil)
