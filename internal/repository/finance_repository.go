package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// FinanceRepository reads and records sales and expenses.
type FinanceRepository interface {
	CreateSale(ctx context.Context, sale *domain.Sale) error
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	SumSales(ctx context.Context, from, to time.Time) (float64, error)
	SumExpenses(ctx context.Context, department string, from, to time.Time) (float64, error)
}

type financeRepository struct {
	pool *pgxpool.Pool
}

// NewFinanceRepository instantiates repository.
func NewFinanceRepository(pool *pgxpool.Pool) FinanceRepository {
	return &financeRepository{pool: pool}
}

func (r *financeRepository) CreateSale(ctx context.Context, sale *domain.Sale) error {
	const query = `
        INSERT INTO sales (reference, total_amount, sale_date, department)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, sale.Reference, sale.TotalAmount, sale.SaleDate, sale.Department).
		Scan(&sale.ID, &sale.CreatedAt)
}

func (r *financeRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	const query = `
        INSERT INTO expenses (reference, amount, category, department, expense_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		expense.Reference,
		expense.Amount,
		expense.Category,
		expense.Department,
		expense.ExpenseDate,
	).Scan(&expense.ID, &expense.CreatedAt)
}

// SumSales totals sales of every department in [from, to).
func (r *financeRepository) SumSales(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(total_amount), 0)::float8 FROM sales
        WHERE sale_date >= $1::date AND sale_date < $2::date`
	var total float64
	err := r.pool.QueryRow(ctx, query, from, to).Scan(&total)
	return total, err
}

// SumExpenses totals one department's expenses in [from, to).
func (r *financeRepository) SumExpenses(ctx context.Context, department string, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0)::float8 FROM expenses
        WHERE department=$1 AND expense_date >= $2::date AND expense_date < $3::date`
	var total float64
	err := r.pool.QueryRow(ctx, query, department, from, to).Scan(&total)
	return total, err
}
