package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// PayrollFilter narrows the payroll listing.
type PayrollFilter struct {
	Cutoff     *domain.Cutoff
	Status     *domain.PayrollStatus
	SearchTerm string
}

// PayrollRepository wraps the payroll table and the generate_payroll procedure.
type PayrollRepository interface {
	Generate(ctx context.Context, cutoff domain.Cutoff) (int, error)
	List(ctx context.Context, filter PayrollFilter) ([]domain.PayrollRecord, error)
	GetByID(ctx context.Context, id string) (*domain.PayrollRecord, error)
	MarkPaid(ctx context.Context, id string) (*domain.PayrollRecord, error)
	MarkCutoffPaid(ctx context.Context, cutoff domain.Cutoff) (int64, error)
}

type payrollRepository struct {
	pool *pgxpool.Pool
}

// NewPayrollRepository instantiates repository.
func NewPayrollRepository(pool *pgxpool.Pool) PayrollRepository {
	return &payrollRepository{pool: pool}
}

const payrollSelect = `
        SELECT r.id, r.user_id, p.full_name, p.email, p.hourly_rate, r.cutoff_start, r.cutoff_end,
               r.total_hours, r.overtime_hours, r.regular_pay, r.overtime_pay, r.total_pay,
               r.deductions, r.net_pay, r.status, r.paid_at, r.created_at
        FROM payroll_records r
        JOIN profiles p ON p.id = r.user_id`

// Generate runs the stored procedure and returns the number of inserted records.
// A repeated window surfaces the unique_user_cutoff violation unchanged.
func (r *payrollRepository) Generate(ctx context.Context, cutoff domain.Cutoff) (int, error) {
	var inserted int
	err := r.pool.QueryRow(ctx, `SELECT generate_payroll($1::date, $2::date)`, cutoff.Start, cutoff.End).Scan(&inserted)
	return inserted, err
}

func (r *payrollRepository) List(ctx context.Context, filter PayrollFilter) ([]domain.PayrollRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Cutoff != nil {
		args = append(args, filter.Cutoff.Start, filter.Cutoff.End)
		clauses = append(clauses, fmt.Sprintf("r.cutoff_start=$%d::date AND r.cutoff_end=$%d::date", len(args)-1, len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(p.full_name) LIKE %s OR LOWER(p.email) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.cutoff_start DESC, p.full_name ASC`, payrollSelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PayrollRecord
	for rows.Next() {
		record, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (*domain.PayrollRecord, error) {
	return scanPayroll(r.pool.QueryRow(ctx, payrollSelect+` WHERE r.id=$1`, id))
}

func (r *payrollRepository) MarkPaid(ctx context.Context, id string) (*domain.PayrollRecord, error) {
	// Already-paid records keep their original paid_at.
	if _, err := r.pool.Exec(ctx, `UPDATE payroll_records SET status='Paid', paid_at=NOW() WHERE id=$1 AND status <> 'Paid'`, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *payrollRepository) MarkCutoffPaid(ctx context.Context, cutoff domain.Cutoff) (int64, error) {
	const query = `
        UPDATE payroll_records SET status='Paid', paid_at=NOW()
        WHERE cutoff_start=$1::date AND cutoff_end=$2::date AND status <> 'Paid'`
	cmd, err := r.pool.Exec(ctx, query, cutoff.Start, cutoff.End)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanPayroll(row pgx.Row) (*domain.PayrollRecord, error) {
	var (
		record domain.PayrollRecord
		owner  domain.Profile
	)
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&owner.FullName,
		&owner.Email,
		&record.HourlyRate,
		&record.CutoffStart,
		&record.CutoffEnd,
		&record.TotalHours,
		&record.OvertimeHours,
		&record.RegularPay,
		&record.OvertimePay,
		&record.TotalPay,
		&record.Deductions,
		&record.NetPay,
		&record.Status,
		&record.PaidAt,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	record.EmployeeName = owner.DisplayName()
	return &record, nil
}
