// Package kafka publishes and consumes tree change events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contenthub/internal/config"
	"contenthub/pkg/log"
	"contenthub/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts bounds how often one message is handed to the processor.
const maxAttempts = 3

var retryBackoff = 500 * time.Millisecond

// TaskProcessor handles one decoded event.
type TaskProcessor interface {
	Process(ctx context.Context, event tasks.TreeEvent) error
}

// Publisher writes tree events to the configured topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a writer keyed by record id so that events for the
// same record keep their order within a partition.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Info("Kafka producer initialised")
	return &Publisher{writer: writer}
}

// Publish sends event as a JSON message.
func (p *Publisher) Publish(ctx context.Context, event tasks.TreeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal tree event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// StartConsumer reads events until ctx is cancelled. Failed events are
// retried up to maxAttempts times, counted in Redis, then skipped.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("failed to close kafka reader: %v", err)
		}
	}()

	log.Infof("Kafka consumer started on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("Kafka consumer stopped")
				return
			}
			log.Error("failed to fetch kafka message", err)
			return
		}

		var event tasks.TreeEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("malformed tree event at offset %d: %v", m.Offset, err)
			commit(ctx, r, m)
			continue
		}

		if !processWithRetry(ctx, processor, event, rdb, m) {
			return
		}
		commit(ctx, r, m)
	}
}

// processWithRetry runs the processor until it succeeds or the attempt limit
// is hit. It returns false only when ctx is cancelled mid-retry, in which
// case the offset stays uncommitted.
func processWithRetry(ctx context.Context, processor TaskProcessor, event tasks.TreeEvent, rdb *redis.Client, m kafka.Message) bool {
	for local := 1; ; local++ {
		err := processor.Process(ctx, event)
		if err == nil {
			if rdb != nil {
				_ = rdb.Del(ctx, attemptsKey(m)).Err()
			}
			return true
		}
		log.Warnw("tree event processing failed", "type", event.Type, "id", event.ID, "offset", m.Offset, "error", err)
		if attempts(ctx, rdb, m, local) >= maxAttempts {
			log.Errorf("tree event failed %d times, skipping: type=%s id=%s", maxAttempts, event.Type, event.ID)
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(retryBackoff * time.Duration(local)):
		}
	}
}

func attemptsKey(m kafka.Message) string {
	return fmt.Sprintf("kafka:attempts:%s:%d:%d", m.Topic, m.Partition, m.Offset)
}

// attempts bumps the Redis counter so the limit survives restarts. Without
// Redis, or if Redis fails, the in-process count is used.
func attempts(ctx context.Context, rdb *redis.Client, m kafka.Message, local int) int {
	if rdb == nil {
		return local
	}
	key := attemptsKey(m)
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return local
	}
	_ = rdb.Expire(ctx, key, 24*time.Hour).Err()
	return int(n)
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("failed to commit kafka offset %d: %v", m.Offset, err)
	}
}
