package alarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "github.com/Emmanjr/health-monitoring/common/redis"
	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ConsumerConfig names the stream and the consumer group position.
type ConsumerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	BatchSize int64
	Block     time.Duration
}

// ReadingConsumer reads reading events from the stream and hands them to
// the evaluator.
type ReadingConsumer struct {
	cfg       ConsumerConfig
	client    *redis.Client
	evaluator *Evaluator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewReadingConsumer(cfg ConsumerConfig, client *redis.Client, evaluator *Evaluator, m *metrics.Metrics, logger *zap.Logger) *ReadingConsumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &ReadingConsumer{cfg: cfg, client: client, evaluator: evaluator, metrics: m, logger: logger}
}

// Start blocks until ctx is cancelled. Read errors back off from 1s up to 30s.
func (c *ReadingConsumer) Start(ctx context.Context) error {
	if err := commonredis.CreateConsumerGroup(ctx, c.client, c.cfg.Stream, c.cfg.Group); err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}

	c.logger.Info("Reading consumer started",
		zap.String("stream", c.cfg.Stream),
		zap.String("group", c.cfg.Group),
		zap.String("consumer", c.cfg.Consumer),
	)

	if err := c.drainPending(ctx); err != nil {
		c.logger.Warn("Failed to drain pending messages", zap.Error(err))
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Reading consumer stopped")
			return nil
		default:
		}

		if err := c.consumeBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume readings", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second
	}
}

// drainPending reprocesses messages delivered before a restart but never
// acknowledged, one batch at a time. Paging by id means messages that fail
// again are passed over instead of being read forever.
func (c *ReadingConsumer) drainPending(ctx context.Context) error {
	after := "0"
	total := 0
	for {
		messages, err := commonredis.ReadPending(ctx, c.client, c.cfg.Stream, c.cfg.Group, c.cfg.Consumer, after, c.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			break
		}
		c.handle(ctx, messages)
		total += len(messages)
		after = messages[len(messages)-1].ID
	}
	if total > 0 {
		c.logger.Info("Reprocessed pending readings", zap.Int("count", total))
	}
	return nil
}

func (c *ReadingConsumer) consumeBatch(ctx context.Context) error {
	messages, err := commonredis.ReadFromStream(ctx, c.client, c.cfg.Stream, c.cfg.Group, c.cfg.Consumer, c.cfg.BatchSize, c.cfg.Block)
	if err != nil {
		return err
	}
	c.handle(ctx, messages)
	return nil
}

// handle processes each message on its own. A failure is logged and the
// message stays pending; the rest of the batch continues.
func (c *ReadingConsumer) handle(ctx context.Context, messages []commonredis.StreamMessage) {
	for _, msg := range messages {
		result, err := c.processMessage(ctx, msg)
		if err != nil {
			c.record("error")
			c.logger.Error("Failed to process reading",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		c.record(result)
		if err := commonredis.Ack(ctx, c.client, c.cfg.Stream, c.cfg.Group, msg.ID); err != nil {
			c.logger.Error("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
}

// processMessage returns a result label. Undecodable messages are reported
// as "malformed" and acknowledged so they are not redelivered forever.
func (c *ReadingConsumer) processMessage(ctx context.Context, msg commonredis.StreamMessage) (string, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		c.logger.Warn("Stream message missing data field", zap.String("message_id", msg.ID))
		return "malformed", nil
	}
	var evt domain.ReadingEvent
	if err := json.Unmarshal([]byte(data), &evt); err != nil || evt.UserID == "" || evt.ReadingID == "" {
		c.logger.Warn("Undecodable reading event", zap.String("message_id", msg.ID), zap.Error(err))
		return "malformed", nil
	}

	outcome, err := c.evaluator.Evaluate(ctx, evt)
	if err != nil {
		return "", err
	}
	return string(outcome), nil
}

func (c *ReadingConsumer) record(result string) {
	if c.metrics != nil {
		c.metrics.StreamMessages.WithLabelValues(result).Inc()
	}
}
