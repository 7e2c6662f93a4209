package subscription

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultChannel carries change notifications between portal instances.
const DefaultChannel = "health:changes"

// RedisNotifier publishes topic names on a Redis channel so that every
// instance's Hub refreshes, not only the one that handled the write.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

var _ Notifier = (*RedisNotifier)(nil)

func (n *RedisNotifier) Notify(ctx context.Context, topics ...string) error {
	for _, t := range topics {
		if err := n.client.Publish(ctx, n.channel, t).Err(); err != nil {
			return fmt.Errorf("publish change %s: %w", t, err)
		}
	}
	return nil
}

// Relay forwards notifications from Redis into hub until ctx is done.
// ready, if non-nil, is closed once the subscription is confirmed.
func (n *RedisNotifier) Relay(ctx context.Context, hub *Hub, ready chan<- struct{}) error {
	pubsub := n.client.Subscribe(ctx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := hub.Notify(ctx, msg.Payload); err != nil {
				n.logger.Warn("Failed to relay change", zap.String("topic", msg.Payload), zap.Error(err))
			}
		}
	}
}
