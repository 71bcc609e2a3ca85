package chat

import (
	"encoding/json"

	"github.com/aetherboard/aetherboard/internal/realtime"
)

// Client frame types.
const (
	FrameJoin       = "join"
	FrameLeave      = "leave"
	FrameSend       = "send"
	FrameEdit       = "edit"
	FrameDelete     = "delete"
	FrameSeen       = "seen"
	FrameNickname   = "nickname"
	FrameWatchBoard = "watch_board"
	FramePing       = "ping"
)

// Server frame types.
const (
	FrameSnapshot     = "snapshot"
	FrameChange       = "change"
	FramePresence     = "presence"
	FrameSystem       = "system"
	FrameNotification = "notification"
	FrameError        = "error"
	FramePong         = "pong"
)

// ClientFrame is what a browser sends over /realtime.
type ClientFrame struct {
	Type       string   `json:"type"`
	Room       string   `json:"room,omitempty"`
	ID         string   `json:"id,omitempty"`
	Content    string   `json:"content,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
	Nickname   string   `json:"nickname,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	BoardID    string   `json:"board_id,omitempty"`
}

// ServerFrame is what the session writes back. Only the fields relevant to
// Type are set.
type ServerFrame struct {
	Type         string                   `json:"type"`
	Room         string                   `json:"room,omitempty"`
	Topic        string                   `json:"topic,omitempty"`
	Messages     []realtime.MessageRecord `json:"messages,omitempty"`
	Change       *realtime.Change         `json:"change,omitempty"`
	Presence     []Presence               `json:"presence,omitempty"`
	Seen         *SeenAck                 `json:"seen,omitempty"`
	Text         string                   `json:"text,omitempty"`
	Notification json.RawMessage          `json:"notification,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// SeenAck is the broadcast payload of a read receipt.
type SeenAck struct {
	Room       string   `json:"room_id"`
	UserID     string   `json:"user_id"`
	MessageIDs []string `json:"message_ids"`
}

// SystemNotice is the broadcast payload of join, leave and nickname lines.
type SystemNotice struct {
	Room string `json:"room_id"`
	Text string `json:"text"`
}
