package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/observability"
)

// MemoryBroker is an in-process Broker for single-instance deployments.
type MemoryBroker struct {
	mu         sync.RWMutex
	subs       map[string]map[*memorySubscription]struct{}
	bufferSize int
	closed     bool
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewMemoryBroker creates a broker whose subscribers buffer bufferSize envelopes.
func NewMemoryBroker(bufferSize int, logger *zap.Logger, metrics *observability.Metrics) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryBroker{
		subs:       make(map[string]map[*memorySubscription]struct{}),
		bufferSize: bufferSize,
		logger:     logger,
		metrics:    metrics,
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for sub := range b.subs[env.Topic] {
		select {
		case sub.ch <- env:
		default:
			b.logger.Warn("realtime subscriber full, dropping event",
				zap.String("topic", env.Topic),
				zap.String("event", env.Event))
			b.metrics.RecordRealtimeDrop(env.Topic)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	sub := &memorySubscription{broker: b, topic: topic, ch: make(chan Envelope, b.bufferSize)}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySubscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub, nil
}

// Close closes every open subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.subs {
		for sub := range subs {
			sub.closeLocked()
		}
		delete(b.subs, topic)
	}
	return nil
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subs, sub.topic)
		}
	}
	sub.closeLocked()
}

type memorySubscription struct {
	broker *MemoryBroker
	topic  string
	ch     chan Envelope
	once   sync.Once
}

func (s *memorySubscription) Topic() string      { return s.topic }
func (s *memorySubscription) C() <-chan Envelope { return s.ch }

func (s *memorySubscription) Close() error {
	s.broker.remove(s)
	return nil
}

// closeLocked must run with the broker write lock held so no Publish is sending.
func (s *memorySubscription) closeLocked() {
	s.once.Do(func() { close(s.ch) })
}
