package dto

// SendMessageRequest posts to a room over HTTP. Nickname and avatar are
// client-local settings sent along with each message.
type SendMessageRequest struct {
	Content  string `json:"content"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// EditMessageRequest payload.
type EditMessageRequest struct {
	Content string `json:"content"`
}
