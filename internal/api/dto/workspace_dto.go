package dto

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// NotificationResponse describes one notification.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Kind      domain.NotificationKind `json:"kind"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// DocumentRequest creates or autosaves a document.
type DocumentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// DocumentResponse describes a document.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateRequest payload.
type CandidateRequest struct {
	Name     string                 `json:"name"`
	Position string                 `json:"position"`
	Score    float64                `json:"score"`
	Status   domain.CandidateStatus `json:"status"`
}

// CandidateResponse describes an applicant.
type CandidateResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Position  string                 `json:"position"`
	Score     float64                `json:"score"`
	Status    domain.CandidateStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SaleRequest records revenue.
type SaleRequest struct {
	Reference   string  `json:"reference"`
	TotalAmount float64 `json:"total_amount"`
	SaleDate    string  `json:"sale_date"`
	Department  string  `json:"department"`
}

// ExpenseRequest records a cost.
type ExpenseRequest struct {
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Department  string  `json:"department"`
	ExpenseDate string  `json:"expense_date"`
}

// AssistantRequest is one chat line to a persona.
type AssistantRequest struct {
	Text string `json:"text"`
}
