package domain

import "time"

// Document is a per-user rich-text note.
type Document struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Feedback is free-form product feedback; UserID is nil for anonymous input.
type Feedback struct {
	ID        string
	UserID    *string
	Type      string
	Message   string
	CreatedAt time.Time
}
