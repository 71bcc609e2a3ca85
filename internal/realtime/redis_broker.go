package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/observability"
)

// RedisBroker relays envelopes through Redis Pub/Sub so every API instance sees
// changes written by any other.
type RedisBroker struct {
	client     *redis.Client
	bufferSize int
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewRedisBroker wraps an existing client. The client's lifecycle stays with the caller.
func NewRedisBroker(client *redis.Client, bufferSize int, logger *zap.Logger, metrics *observability.Metrics) *RedisBroker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, bufferSize: bufferSize, logger: logger, metrics: metrics}
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := b.client.Publish(ctx, env.Topic, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", env.Topic, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)
	// Wait for the subscription confirmation so nothing published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	sub := &redisSubscription{
		topic:  topic,
		pubsub: pubsub,
		ch:     make(chan Envelope, b.bufferSize),
		done:   make(chan struct{}),
	}
	go b.forward(sub)
	return sub, nil
}

func (b *RedisBroker) forward(sub *redisSubscription) {
	defer close(sub.done)
	defer close(sub.ch)
	for msg := range sub.pubsub.Channel() {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			b.logger.Warn("discarding malformed realtime envelope", zap.String("topic", msg.Channel), zap.Error(err))
			continue
		}
		select {
		case sub.ch <- env:
		default:
			b.logger.Warn("realtime subscriber full, dropping event",
				zap.String("topic", env.Topic),
				zap.String("event", env.Event))
			b.metrics.RecordRealtimeDrop(env.Topic)
		}
	}
}

// Close is a no-op; the Redis client is closed by its owner.
func (b *RedisBroker) Close() error { return nil }

type redisSubscription struct {
	topic  string
	pubsub *redis.PubSub
	ch     chan Envelope
	done   chan struct{}
	once   sync.Once
	err    error
}

func (s *redisSubscription) Topic() string      { return s.topic }
func (s *redisSubscription) C() <-chan Envelope { return s.ch }

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
		<-s.done
	})
	return s.err
}
