package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// DefaultInsightsDepartment is the department whose expenses feed insights by default.
const DefaultInsightsDepartment = "Sales"

// AnalyticsService computes the monthly insights panel and records finance rows.
type AnalyticsService struct {
	finance repository.FinanceRepository
	now     func() time.Time
}

func NewAnalyticsService(finance repository.FinanceRepository, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{finance: finance, now: now}
}

// Insights compares month with the previous month. The four sums are read concurrently.
func (s *AnalyticsService) Insights(ctx context.Context, month time.Time, department string) (*domain.MonthlyInsights, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		department = DefaultInsightsDepartment
	}
	start, next := domain.MonthBounds(month)
	prevStart := start.AddDate(0, -1, 0)

	var revenue, expenses, prevRevenue, prevExpenses float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		revenue, err = s.finance.SumSales(gctx, start, next)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.finance.SumExpenses(gctx, department, start, next)
		return err
	})
	g.Go(func() (err error) {
		prevRevenue, err = s.finance.SumSales(gctx, prevStart, start)
		return err
	})
	g.Go(func() (err error) {
		prevExpenses, err = s.finance.SumExpenses(gctx, department, prevStart, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	insights := domain.BuildInsights(start, s.now(), department, revenue, expenses, prevRevenue, prevExpenses)
	return &insights, nil
}

func (s *AnalyticsService) RecordSale(ctx context.Context, sale *domain.Sale) error {
	sale.Reference = strings.TrimSpace(sale.Reference)
	if sale.Reference == "" || sale.TotalAmount < 0 || sale.SaleDate.IsZero() {
		return apperrors.NewValidationError("reference, non-negative amount and sale date are required", nil)
	}
	if sale.Department == "" {
		sale.Department = DefaultInsightsDepartment
	}
	if err := s.finance.CreateSale(ctx, sale); err != nil {
		return referenceConflict(err, sale.Reference)
	}
	return nil
}

func (s *AnalyticsService) RecordExpense(ctx context.Context, expense *domain.Expense) error {
	expense.Reference = strings.TrimSpace(expense.Reference)
	if expense.Reference == "" || expense.Amount < 0 || expense.ExpenseDate.IsZero() {
		return apperrors.NewValidationError("reference, non-negative amount and expense date are required", nil)
	}
	if expense.Department == "" {
		expense.Department = DefaultInsightsDepartment
	}
	if err := s.finance.CreateExpense(ctx, expense); err != nil {
		return referenceConflict(err, expense.Reference)
	}
	return nil
}

func referenceConflict(err error, reference string) error {
	if apperrors.IsUniqueViolation(err) {
		return apperrors.NewConflict("reference already recorded", map[string]any{"reference": reference})
	}
	return apperrors.MapError(err)
}
