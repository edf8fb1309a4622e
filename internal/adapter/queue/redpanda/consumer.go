package redpanda

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/usecase"
)

// Indexer is the subset of IngestService the consumer depends on, so tests
// can substitute a fake without building a real chunker/embedder/store.
type Indexer interface {
	IngestPath(ctx domain.Context, filename, path string) (usecase.IngestResult, error)
}

// Consumer polls TopicIndex and drives each task through an Indexer,
// retrying transient failures with backoff and routing exhausted tasks to
// TopicIndexDLQ. Unlike the teacher's evaluation consumer, this is a plain
// (non-transactional) consumer group: bulk re-embedding has no
// exactly-once requirement the way job-result delivery did, since
// IngestService.IngestPath is naturally idempotent-ish (re-ingesting a CV
// just creates a new CV ID rather than corrupting existing data).
type Consumer struct {
	client  *kgo.Client
	dlq     *Producer
	indexer Indexer
	retry   domain.RetryConfig
}

// NewConsumer joins groupID on brokers and polls TopicIndex.
func NewConsumer(brokers []string, groupID string, indexer Indexer, dlq *Producer, retry domain.RetryConfig) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w: no seed brokers configured", domain.ErrInvalidArgument)
	}
	if groupID == "" {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w: missing group id", domain.ErrInvalidArgument)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(TopicIndex),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w", err)
	}
	return &Consumer{client: client, dlq: dlq, indexer: indexer, retry: retry}, nil
}

// Run polls until ctx is canceled, processing records synchronously one at a
// time. A dedicated worker pool is unnecessary at the scale SPEC_FULL.md
// targets (bulk ingestion batches, not a high-throughput event stream).
func (c *Consumer) Run(ctx domain.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				slog.Error("redpanda fetch error", slog.String("topic", e.Topic), slog.Int("partition", int(e.Partition)), slog.Any("error", e.Err))
			}
		}

		fetches.EachRecord(func(record *kgo.Record) {
			c.process(ctx, record)
		})
	}
}

func (c *Consumer) process(ctx domain.Context, record *kgo.Record) {
	var payload domain.IndexTaskPayload
	if err := json.Unmarshal(record.Value, &payload); err != nil {
		slog.Error("redpanda malformed index task, dropping", slog.Any("error", err))
		return
	}
	taskID := string(record.Key)

	info := domain.RetryInfo{MaxAttempts: c.retry.MaxRetries, RetryStatus: domain.RetryStatusNone}
	for {
		_, err := c.indexer.IngestPath(ctx, payload.Filename, payload.FilePath)
		if err == nil {
			return
		}
		info.UpdateRetryAttempt(err)
		if !info.ShouldRetry(err, c.retry) {
			c.sendToDLQ(ctx, taskID, payload, err)
			return
		}
		info.MarkAsRetrying()
		delay := info.CalculateNextRetryDelay(c.retry)
		slog.Warn("index task failed, retrying", slog.String("task_id", taskID), slog.Int("attempt", info.AttemptCount), slog.Duration("delay", delay), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (c *Consumer) sendToDLQ(ctx domain.Context, taskID string, payload domain.IndexTaskPayload, cause error) {
	slog.Error("index task exhausted retries, routing to DLQ", slog.String("task_id", taskID), slog.Any("error", cause))
	if c.dlq == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	record := &kgo.Record{Topic: TopicIndexDLQ, Key: []byte(taskID), Value: body}
	_ = c.dlq.client.ProduceSync(ctx, record)
}

// Close releases the underlying client.
func (c *Consumer) Close() { c.client.Close() }
