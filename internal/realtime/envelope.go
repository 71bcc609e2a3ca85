package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// BroadcastMessages carries ephemeral presence, seen and system events of the
// messaging page. It is never persisted.
const BroadcastMessages = "broadcast:messages"

// ChangeType is the row operation of a change-feed event.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Broadcast event names.
const (
	EventChange   = "change"
	EventPresence = "presence"
	EventSeen     = "seen"
	EventSystem   = "system"
)

// Envelope is the unit moved by a Broker.
type Envelope struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Change is a row-level change notification filtered by topic.
type Change struct {
	Table     string          `json:"table"`
	Type      ChangeType      `json:"type"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
}

// Topic builds the change-feed topic "table:column=value".
func Topic(table, column, value string) string {
	return fmt.Sprintf("%s:%s=%s", table, column, value)
}

// RoomTopic is the message feed of one chat room.
func RoomTopic(room string) string { return Topic("messages", "room_id", room) }

// BoardTopic is the task feed of one board.
func BoardTopic(boardID string) string { return Topic("tasks", "board_id", boardID) }

// NotificationTopic is the notification feed of one profile.
func NotificationTopic(userID string) string { return Topic("notifications", "user_id", userID) }

// NewEnvelope marshals payload into an envelope for topic.
func NewEnvelope(topic, event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Envelope{Topic: topic, Event: event, Payload: raw, SentAt: time.Now().UTC()}, nil
}

// NewChange builds a change envelope; record or old may be nil.
func NewChange(topic, table string, typ ChangeType, record, old any) (Envelope, error) {
	change := Change{Table: table, Type: typ}
	var err error
	if record != nil {
		if change.Record, err = json.Marshal(record); err != nil {
			return Envelope{}, fmt.Errorf("encode %s record: %w", table, err)
		}
	}
	if old != nil {
		if change.OldRecord, err = json.Marshal(old); err != nil {
			return Envelope{}, fmt.Errorf("encode %s old record: %w", table, err)
		}
	}
	return NewEnvelope(topic, EventChange, change)
}

// DecodeChange extracts the change carried by env.
func DecodeChange(env Envelope) (Change, error) {
	if env.Event != EventChange {
		return Change{}, fmt.Errorf("envelope %q is not a change", env.Event)
	}
	var change Change
	if err := json.Unmarshal(env.Payload, &change); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	return change, nil
}
