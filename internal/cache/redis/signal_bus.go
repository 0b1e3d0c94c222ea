package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// SignalBus implements domain.SignalBus on Redis Pub/Sub. The sequencer
// publishes ordered lifecycle events to per-track channels; the WebSocket
// hub subscribes to the rounds:* pattern, so deliveries carry the concrete
// channel they arrived on.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// Publish sends a payload to a channel.
func (sb *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := sb.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription (pattern-aware) and returns a channel of
// deliveries. Cancelling the context tears the subscription down and closes
// the returned channel.
func (sb *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan domain.BusMessage, error) {
	var pubsub *redis.PubSub
	if strings.ContainsAny(channel, "*?[") {
		pubsub = sb.rdb.PSubscribe(ctx, channel)
	} else {
		pubsub = sb.rdb.Subscribe(ctx, channel)
	}

	// Wait for the subscription confirmation before handing the channel out.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	go func() {
		<-ctx.Done()
		_ = pubsub.Close()
	}()

	out := make(chan domain.BusMessage, 128)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			delivery := domain.BusMessage{Channel: msg.Channel, Payload: []byte(msg.Payload)}
			select {
			case out <- delivery:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
