package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/logger"
)

// DefaultChannel is the Redis pub/sub channel account changes publish to
// when no other channel is configured.
const DefaultChannel = "lifeline:accounts"

// A RedisBroker delivers Events across processes over Redis pub/sub.
//
// Redis pub/sub preserves publish order per channel, which satisfies the
// per-account ordering guarantee, and drops messages for disconnected
// subscribers, which the periodic refresh backstop tolerates.
type RedisBroker struct {
	client  *redis.Client
	channel string
	l       logger.Logger
}

// NewRedisBroker constructs a RedisBroker publishing on channel.
// An empty channel falls back to DefaultChannel.
func NewRedisBroker(client *redis.Client, channel string, l logger.Logger) (*RedisBroker, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: a redis client is required", lifeline.ErrBadConfig)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	if l == nil {
		l = logger.NewLogger()
	}

	return &RedisBroker{client: client, channel: channel, l: l}, nil
}

// Publish JSON-encodes ev and publishes it on the broker's channel.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: cannot encode event: %s", lifeline.ErrUnexpected, err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: publish failed: %s", lifeline.ErrUnexpected, err)
	}

	return nil
}

// Subscribe opens a Redis subscription on the broker's channel and decodes
// incoming payloads into Events. Payloads that cannot be decoded are logged
// and skipped.
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Event, Unsubscribe, error) {
	ps := b.client.Subscribe(ctx, b.channel)

	// forces the subscription to be established before any Publish races it
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("%w: subscribe failed: %s", lifeline.ErrUnexpected, err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.l.Warn("skipping undecodable feed payload", &logger.LogContext{Error: err})
				continue
			}

			select {
			case out <- ev:
			default:
				b.l.Warn("dropping feed event for stalled subscriber", nil)
			}
		}
	}()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				b.l.Warn("closing feed subscription", &logger.LogContext{Error: err})
			}
		})
	}

	return out, unsub, nil
}
