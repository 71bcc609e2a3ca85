package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

type stubAnalytics struct {
	month      time.Time
	department string
	refs       map[string]bool
}

func (s *stubAnalytics) Insights(_ context.Context, month time.Time, department string) (*domain.MonthlyInsights, error) {
	s.month, s.department = month, department
	return &domain.MonthlyInsights{Month: month.Format("2006-01"), Department: department, Revenue: 1200}, nil
}

func (s *stubAnalytics) RecordSale(_ context.Context, sale *domain.Sale) error {
	sale.ID = "sale-1"
	return nil
}

func (s *stubAnalytics) RecordExpense(_ context.Context, e *domain.Expense) error {
	if s.refs[e.Reference] {
		return apperrors.NewConflict("expense reference already recorded", nil)
	}
	s.refs[e.Reference] = true
	e.ID = "exp-1"
	return nil
}

type stubCandidates struct {
	filter repository.CandidateFilter
}

func (s *stubCandidates) List(_ context.Context, f repository.CandidateFilter) ([]domain.Candidate, error) {
	s.filter = f
	return []domain.Candidate{{ID: "c1", Name: "Lin", Score: 91, Status: domain.CandidateInterview}}, nil
}

func (s *stubCandidates) Create(_ context.Context, c *domain.Candidate) error {
	c.ID = "c2"
	return nil
}

type stubFeedback struct {
	userID *string
}

func (s *stubFeedback) Submit(_ context.Context, userID *string, kind, message string) (*domain.Feedback, error) {
	s.userID = userID
	return &domain.Feedback{ID: "f1", UserID: userID, Type: kind, Message: message}, nil
}

func TestInsightsParsesMonth(t *testing.T) {
	svc := &stubAnalytics{}
	app := newApp(manager)
	app.Get("/analytics/insights", NewAnalyticsHandler(svc, nil, nil).Insights)

	status, body := call(t, app, http.MethodGet, "/analytics/insights?month=2026-03&department=IT", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2026-03", data(body)["month"])
	assert.Equal(t, "IT", svc.department)
	assert.Equal(t, time.March, svc.month.Month())

	status, body = call(t, app, http.MethodGet, "/analytics/insights?month=March", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRecordExpenseRejectsDuplicateReference(t *testing.T) {
	svc := &stubAnalytics{refs: map[string]bool{}}
	app := newApp(manager)
	app.Post("/analytics/expenses", NewAnalyticsHandler(svc, nil, nil).RecordExpense)

	payload := map[string]any{"reference": "E-1", "amount": 40.5, "category": "travel", "expense_date": "2026-03-04"}
	status, body := call(t, app, http.MethodPost, "/analytics/expenses", payload)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "2026-03-04", data(body)["expense_date"])

	status, body = call(t, app, http.MethodPost, "/analytics/expenses", payload)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	payload["expense_date"] = "04/03/2026"
	status, _ = call(t, app, http.MethodPost, "/analytics/expenses", payload)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListCandidatesFilter(t *testing.T) {
	svc := &stubCandidates{}
	app := newApp(manager)
	app.Get("/candidates", NewAnalyticsHandler(nil, svc, nil).ListCandidates)

	status, body := call(t, app, http.MethodGet, "/candidates?q=lin&status=interview&sort=asc", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, "lin", svc.filter.SearchTerm)
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, domain.CandidateInterview, *svc.filter.Status)
	assert.False(t, svc.filter.SortDesc)

	_, _ = call(t, app, http.MethodGet, "/candidates?status=all", nil)
	assert.Nil(t, svc.filter.Status)
	assert.True(t, svc.filter.SortDesc, "highest score first by default")
}

func TestFeedbackRecordsCaller(t *testing.T) {
	svc := &stubFeedback{}
	app := newApp(employee)
	app.Post("/feedback", NewAnalyticsHandler(nil, nil, svc).SubmitFeedback)

	status, body := call(t, app, http.MethodPost, "/feedback", map[string]string{"type": "bug", "message": "chart is blank"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "bug", data(body)["type"])
	require.NotNil(t, svc.userID)
	assert.Equal(t, "u1", *svc.userID)
}
