package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/realtime"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.ToDomainError(err).Code
}

func subscribe(t *testing.T, b realtime.Broker, topic string) realtime.Subscription {
	t.Helper()
	sub, err := b.Subscribe(context.Background(), topic)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return sub
}

func nextChange(t *testing.T, sub realtime.Subscription) realtime.Change {
	t.Helper()
	select {
	case env := <-sub.C():
		change, err := realtime.DecodeChange(env)
		require.NoError(t, err)
		return change
	case <-time.After(time.Second):
		t.Fatalf("no change on %s", sub.Topic())
		return realtime.Change{}
	}
}

func requireQuiet(t *testing.T, sub realtime.Subscription) {
	t.Helper()
	select {
	case env := <-sub.C():
		t.Fatalf("unexpected %s event on %s", env.Event, sub.Topic())
	default:
	}
}

func decodeRecord[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// notifier wires a dispatcher to a NotificationService backed by a fake repo.
func notifier(broker realtime.Broker) (events.Dispatcher, *fakeNotificationRepo) {
	dispatcher := events.NewInMemoryDispatcher()
	repo := &fakeNotificationRepo{}
	NewNotificationService(NotificationDependencies{
		NotificationRepo: repo,
		Dispatcher:       dispatcher,
		Broker:           broker,
	}).RegisterHandlers()
	return dispatcher, repo
}
