package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// AnalyticsService is the insights surface used by AnalyticsHandler.
type AnalyticsService interface {
	Insights(ctx context.Context, month time.Time, department string) (*domain.MonthlyInsights, error)
	RecordSale(ctx context.Context, sale *domain.Sale) error
	RecordExpense(ctx context.Context, expense *domain.Expense) error
}

// CandidateService is the SmartFilter surface.
type CandidateService interface {
	List(ctx context.Context, filter repository.CandidateFilter) ([]domain.Candidate, error)
	Create(ctx context.Context, c *domain.Candidate) error
}

// FeedbackService accepts product feedback.
type FeedbackService interface {
	Submit(ctx context.Context, userID *string, kind, message string) (*domain.Feedback, error)
}

// AnalyticsHandler serves the management pages: insights, finance input,
// candidates and feedback.
type AnalyticsHandler struct {
	analytics  AnalyticsService
	candidates CandidateService
	feedback   FeedbackService
}

func NewAnalyticsHandler(analytics AnalyticsService, candidates CandidateService, feedback FeedbackService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, candidates: candidates, feedback: feedback}
}

// Insights GET /analytics/insights?month=YYYY-MM&department=.
func (h *AnalyticsHandler) Insights(c *fiber.Ctx) error {
	month := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return apperrors.NewValidationError("month must be YYYY-MM", map[string]any{"month": raw})
		}
		month = parsed
	}
	insights, err := h.analytics.Insights(c.UserContext(), month, c.Query("department"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": insights})
}

// RecordSale POST /analytics/sales.
func (h *AnalyticsHandler) RecordSale(c *fiber.Ctx) error {
	var req dto.SaleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	date, err := parseDate("sale_date", req.SaleDate, time.Time{})
	if err != nil {
		return err
	}
	sale := &domain.Sale{Reference: req.Reference, TotalAmount: req.TotalAmount, SaleDate: date, Department: req.Department}
	if err := h.analytics.RecordSale(c.UserContext(), sale); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":           sale.ID,
		"reference":    sale.Reference,
		"total_amount": sale.TotalAmount,
		"sale_date":    sale.SaleDate.Format(domain.DateLayout),
		"department":   sale.Department,
	}})
}

// RecordExpense POST /analytics/expenses.
func (h *AnalyticsHandler) RecordExpense(c *fiber.Ctx) error {
	var req dto.ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	date, err := parseDate("expense_date", req.ExpenseDate, time.Time{})
	if err != nil {
		return err
	}
	expense := &domain.Expense{
		Reference:   req.Reference,
		Amount:      req.Amount,
		Category:    req.Category,
		Department:  req.Department,
		ExpenseDate: date,
	}
	if err := h.analytics.RecordExpense(c.UserContext(), expense); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":           expense.ID,
		"reference":    expense.Reference,
		"amount":       expense.Amount,
		"category":     expense.Category,
		"department":   expense.Department,
		"expense_date": expense.ExpenseDate.Format(domain.DateLayout),
	}})
}

// ListCandidates GET /candidates?q=&status=&sort=asc|desc.
func (h *AnalyticsHandler) ListCandidates(c *fiber.Ctx) error {
	filter := repository.CandidateFilter{
		SearchTerm: strings.TrimSpace(c.Query("q")),
		SortDesc:   !strings.EqualFold(c.Query("sort"), "asc"),
	}
	if status := c.Query("status"); status != "" && status != "all" {
		s := domain.CandidateStatus(status)
		filter.Status = &s
	}
	list, err := h.candidates.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(list))
	for i := range list {
		items = append(items, candidateResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCandidate POST /candidates.
func (h *AnalyticsHandler) CreateCandidate(c *fiber.Ctx) error {
	var req dto.CandidateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	candidate := &domain.Candidate{Name: req.Name, Position: req.Position, Score: req.Score, Status: req.Status}
	if err := h.candidates.Create(c.UserContext(), candidate); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": candidateResponse(candidate)})
}

// SubmitFeedback POST /feedback.
func (h *AnalyticsHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	var userID *string
	if profile, err := currentProfile(c); err == nil {
		userID = &profile.ID
	}
	fb, err := h.feedback.Submit(c.UserContext(), userID, req.Type, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":         fb.ID,
		"type":       fb.Type,
		"message":    fb.Message,
		"created_at": fb.CreatedAt,
	}})
}

func candidateResponse(c *domain.Candidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		ID:        c.ID,
		Name:      c.Name,
		Position:  c.Position,
		Score:     c.Score,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
