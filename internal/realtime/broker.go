package realtime

import (
	"context"
	"errors"
)

// ErrBrokerClosed is returned by operations on a closed broker.
var ErrBrokerClosed = errors.New("realtime: broker closed")

// Broker fans envelopes out to topic subscribers. Delivery is best effort:
// a subscriber whose buffer is full misses the event.
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}

// Subscription is a live feed of one topic. C is closed after Close returns.
type Subscription interface {
	Topic() string
	C() <-chan Envelope
	Close() error
}

// Publish encodes payload and publishes it on topic.
func Publish(ctx context.Context, b Broker, topic, event string, payload any) error {
	env, err := NewEnvelope(topic, event, payload)
	if err != nil {
		return err
	}
	return b.Publish(ctx, env)
}

// PublishChange encodes a row change and publishes it on topic.
func PublishChange(ctx context.Context, b Broker, topic, table string, typ ChangeType, record, old any) error {
	env, err := NewChange(topic, table, typ, record, old)
	if err != nil {
		return err
	}
	return b.Publish(ctx, env)
}
