package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
)

func newMessageFixture(t *testing.T) (*MessageService, *fakeMessageRepo, *realtime.MemoryBroker) {
	t.Helper()
	repo := newFakeMessageRepo()
	broker := realtime.NewMemoryBroker(8, nil, nil)
	t.Cleanup(func() { _ = broker.Close() })
	svc := NewMessageService(MessageDependencies{
		MessageRepo: repo,
		Broker:      broker,
		Rooms:       []string{"HR", "IT", "Finance"},
	})
	return svc, repo, broker
}

var alice = &domain.Profile{ID: "alice", Email: "alice@example.com", FullName: "Alice", Role: domain.RoleEmployee}

func TestSendBlankContentIsNoop(t *testing.T) {
	svc, repo, broker := newMessageFixture(t)
	sub := subscribe(t, broker, realtime.RoomTopic("HR"))

	msg, err := svc.Send(context.Background(), SendMessageInput{Sender: alice, Room: "HR", Content: "  \n\t "})
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Empty(t, repo.rows)
	requireQuiet(t, sub)
}

func TestSendPublishesInsertToRoomOnly(t *testing.T) {
	svc, _, broker := newMessageFixture(t)
	hr := subscribe(t, broker, realtime.RoomTopic("HR"))
	it := subscribe(t, broker, realtime.RoomTopic("IT"))

	msg, err := svc.Send(context.Background(), SendMessageInput{Sender: alice, Room: "HR", Content: " hello ", Nickname: "Al"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Al", msg.SenderName)

	change := nextChange(t, hr)
	assert.Equal(t, realtime.ChangeInsert, change.Type)
	rec := decodeRecord[realtime.MessageRecord](t, change.Record)
	assert.Equal(t, msg.ID, rec.ID)
	assert.Equal(t, "HR", rec.RoomID)
	requireQuiet(t, it)
}

func TestSendRejectsUnknownRoom(t *testing.T) {
	svc, _, _ := newMessageFixture(t)
	_, err := svc.Send(context.Background(), SendMessageInput{Sender: alice, Room: "Ops", Content: "hi"})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
}

func TestEditKeepsSingleMarker(t *testing.T) {
	ctx := context.Background()
	svc, repo, broker := newMessageFixture(t)
	msg, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "IT", Content: "draft"})
	require.NoError(t, err)
	sub := subscribe(t, broker, realtime.RoomTopic("IT"))

	edited, err := svc.Edit(ctx, alice.ID, msg.ID, "final")
	require.NoError(t, err)
	edited, err = svc.Edit(ctx, alice.ID, msg.ID, edited.Content)
	require.NoError(t, err)

	assert.Equal(t, "final (edited)", edited.Content)
	assert.True(t, repo.rows[msg.ID].Edited)
	assert.Equal(t, "final (edited)", repo.rows[msg.ID].Content)

	first := nextChange(t, sub)
	assert.Equal(t, realtime.ChangeUpdate, first.Type)
	old := decodeRecord[realtime.MessageRecord](t, first.OldRecord)
	assert.Equal(t, "draft", old.Content)
	_ = nextChange(t, sub)

	blank, err := svc.Edit(ctx, alice.ID, msg.ID, "   ")
	require.NoError(t, err)
	assert.Nil(t, blank)
	requireQuiet(t, sub)
}

func TestOnlySenderChangesMessage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMessageFixture(t)
	msg, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "HR", Content: "mine"})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "mallory", msg.ID, "theirs")
	assert.Equal(t, "FORBIDDEN", errorCode(err))
	assert.Equal(t, "FORBIDDEN", errorCode(svc.Delete(ctx, "mallory", msg.ID)))
	assert.Equal(t, "NOT_FOUND", errorCode(svc.Delete(ctx, alice.ID, "missing")))
}

func TestDeletePublishesOldRecord(t *testing.T) {
	ctx := context.Background()
	svc, repo, broker := newMessageFixture(t)
	msg, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "Finance", Content: "bye"})
	require.NoError(t, err)
	sub := subscribe(t, broker, realtime.RoomTopic("Finance"))

	require.NoError(t, svc.Delete(ctx, alice.ID, msg.ID))
	assert.Empty(t, repo.rows)

	change := nextChange(t, sub)
	assert.Equal(t, realtime.ChangeDelete, change.Type)
	assert.Empty(t, change.Record)
	assert.Equal(t, msg.ID, decodeRecord[realtime.MessageRecord](t, change.OldRecord).ID)
}

func TestListRoomOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMessageFixture(t)
	for _, text := range []string{"one", "two"} {
		_, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "HR", Content: text})
		require.NoError(t, err)
	}
	_, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "IT", Content: "elsewhere"})
	require.NoError(t, err)

	msgs, err := svc.ListRoom(ctx, "HR")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
}

func TestRenameRewritesPastMessagesAcrossRooms(t *testing.T) {
	ctx := context.Background()
	svc, repo, broker := newMessageFixture(t)
	hrMsg, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "HR", Content: "one"})
	require.NoError(t, err)
	itMsg, err := svc.Send(ctx, SendMessageInput{Sender: alice, Room: "IT", Content: "two"})
	require.NoError(t, err)
	other, err := svc.Send(ctx, SendMessageInput{Sender: &domain.Profile{ID: "bob"}, Room: "HR", Content: "three", Nickname: "Bob"})
	require.NoError(t, err)
	hr := subscribe(t, broker, realtime.RoomTopic("HR"))
	it := subscribe(t, broker, realtime.RoomTopic("IT"))

	n, err := svc.Rename(ctx, alice.ID, "  Ally ")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Ally", repo.rows[hrMsg.ID].SenderName)
	assert.Equal(t, "Ally", repo.rows[itMsg.ID].SenderName)
	assert.Equal(t, "Bob", repo.rows[other.ID].SenderName)

	for _, sub := range []realtime.Subscription{hr, it} {
		change := nextChange(t, sub)
		assert.Equal(t, realtime.ChangeUpdate, change.Type)
		assert.Equal(t, "Ally", decodeRecord[realtime.MessageRecord](t, change.Record).SenderName)
		requireQuiet(t, sub)
	}

	n, err = svc.Rename(ctx, alice.ID, "   ")
	require.NoError(t, err)
	assert.Zero(t, n)
	requireQuiet(t, hr)
}
