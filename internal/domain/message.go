package domain

import (
	"strings"
	"time"
)

// EditedMarker is appended once to edited message content.
const EditedMarker = " (edited)"

// Message is a chat row scoped to a fixed room.
type Message struct {
	ID           string
	RoomID       string
	SenderID     string
	SenderName   string
	SenderAvatar string
	Content      string
	Edited       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EditedContent strips any trailing edit markers from content and appends exactly one.
func EditedContent(content string) string {
	content = strings.TrimSpace(content)
	for strings.HasSuffix(content, strings.TrimSpace(EditedMarker)) {
		content = strings.TrimSpace(strings.TrimSuffix(content, strings.TrimSpace(EditedMarker)))
	}
	return content + EditedMarker
}
