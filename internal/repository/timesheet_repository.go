package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// TimesheetRepository persists weekly sheets and their day entries.
type TimesheetRepository interface {
	GetOrCreate(ctx context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error)
	GetByID(ctx context.Context, id string) (*domain.Timesheet, error)
	ListByStatusAndWeek(ctx context.Context, status domain.TimesheetStatus, weekStart *time.Time) ([]domain.Timesheet, error)
	UpdateStatus(ctx context.Context, sheet *domain.Timesheet) error
	UpdateTotal(ctx context.Context, id string, total float64) error

	ListEntries(ctx context.Context, timesheetID string) ([]domain.TimesheetEntry, error)
	GetEntry(ctx context.Context, id string) (*domain.TimesheetEntry, error)
	UpsertEntry(ctx context.Context, entry *domain.TimesheetEntry) error
	DeleteEntry(ctx context.Context, id string) error
	ListPendingOvertime(ctx context.Context) ([]domain.OvertimeRequest, error)
	SetOvertimeStatus(ctx context.Context, entryID string, status domain.OvertimeStatus) error
}

type timesheetRepository struct {
	pool *pgxpool.Pool
}

// NewTimesheetRepository instantiates repository.
func NewTimesheetRepository(pool *pgxpool.Pool) TimesheetRepository {
	return &timesheetRepository{pool: pool}
}

const timesheetColumns = `id, user_id, week_start, status, total_hours, submitted_at, reviewed_by, reviewed_at, created_at, updated_at`

const entryColumns = `id, timesheet_id, entry_date, task, hours, description, overtime_hours, overtime_status, created_at, updated_at`

// GetOrCreate returns the sheet for the week, inserting a draft when absent.
func (r *timesheetRepository) GetOrCreate(ctx context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error) {
	query := `
        INSERT INTO timesheets (user_id, week_start)
        VALUES ($1, $2)
        ON CONFLICT ON CONSTRAINT unique_user_week DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING ` + timesheetColumns
	return scanTimesheet(r.pool.QueryRow(ctx, query, userID, weekStart))
}

func (r *timesheetRepository) GetByID(ctx context.Context, id string) (*domain.Timesheet, error) {
	return scanTimesheet(r.pool.QueryRow(ctx, `SELECT `+timesheetColumns+` FROM timesheets WHERE id=$1`, id))
}

func (r *timesheetRepository) ListByStatusAndWeek(ctx context.Context, status domain.TimesheetStatus, weekStart *time.Time) ([]domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets
        WHERE status=$1 AND ($2::date IS NULL OR week_start=$2::date)
        ORDER BY week_start DESC, submitted_at ASC`
	rows, err := r.pool.Query(ctx, query, status, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Timesheet
	for rows.Next() {
		sheet, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sheet)
	}
	return result, rows.Err()
}

func (r *timesheetRepository) UpdateStatus(ctx context.Context, sheet *domain.Timesheet) error {
	const query = `
        UPDATE timesheets SET status=$1, submitted_at=$2, reviewed_by=$3, reviewed_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		sheet.Status,
		sheet.SubmittedAt,
		sheet.ReviewedBy,
		sheet.ReviewedAt,
		sheet.ID,
	).Scan(&sheet.UpdatedAt)
}

func (r *timesheetRepository) UpdateTotal(ctx context.Context, id string, total float64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE timesheets SET total_hours=$1, updated_at=NOW() WHERE id=$2`, total, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *timesheetRepository) ListEntries(ctx context.Context, timesheetID string) ([]domain.TimesheetEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM timesheet_entries WHERE timesheet_id=$1 ORDER BY entry_date ASC`, timesheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimesheetEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *timesheetRepository) GetEntry(ctx context.Context, id string) (*domain.TimesheetEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM timesheet_entries WHERE id=$1`, id))
}

// UpsertEntry writes the entry for its day; a second write for the same day
// updates the existing row.
func (r *timesheetRepository) UpsertEntry(ctx context.Context, entry *domain.TimesheetEntry) error {
	const query = `
        INSERT INTO timesheet_entries (timesheet_id, entry_date, task, hours, description, overtime_hours, overtime_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT ON CONSTRAINT unique_timesheet_day DO UPDATE SET
            task=EXCLUDED.task,
            hours=EXCLUDED.hours,
            description=EXCLUDED.description,
            overtime_hours=EXCLUDED.overtime_hours,
            overtime_status=EXCLUDED.overtime_status,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.TimesheetID,
		entry.EntryDate,
		entry.Task,
		entry.Hours,
		entry.Description,
		entry.OvertimeHours,
		entry.OvertimeStatus,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *timesheetRepository) DeleteEntry(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM timesheet_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *timesheetRepository) ListPendingOvertime(ctx context.Context) ([]domain.OvertimeRequest, error) {
	const query = `
        SELECT e.id, e.timesheet_id, e.entry_date, e.task, e.hours, e.description, e.overtime_hours,
               e.overtime_status, e.created_at, e.updated_at, t.user_id, p.full_name, p.email
        FROM timesheet_entries e
        JOIN timesheets t ON t.id = e.timesheet_id
        JOIN profiles p ON p.id = t.user_id
        WHERE e.overtime_status = 'pending'
        ORDER BY e.entry_date ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OvertimeRequest
	for rows.Next() {
		var (
			req   domain.OvertimeRequest
			owner domain.Profile
		)
		if err := rows.Scan(
			&req.Entry.ID,
			&req.Entry.TimesheetID,
			&req.Entry.EntryDate,
			&req.Entry.Task,
			&req.Entry.Hours,
			&req.Entry.Description,
			&req.Entry.OvertimeHours,
			&req.Entry.OvertimeStatus,
			&req.Entry.CreatedAt,
			&req.Entry.UpdatedAt,
			&req.UserID,
			&owner.FullName,
			&owner.Email,
		); err != nil {
			return nil, err
		}
		req.EmployeeName = owner.DisplayName()
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *timesheetRepository) SetOvertimeStatus(ctx context.Context, entryID string, status domain.OvertimeStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE timesheet_entries SET overtime_status=$1, updated_at=NOW() WHERE id=$2`, status, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTimesheet(row pgx.Row) (*domain.Timesheet, error) {
	var sheet domain.Timesheet
	if err := row.Scan(
		&sheet.ID,
		&sheet.UserID,
		&sheet.WeekStart,
		&sheet.Status,
		&sheet.TotalHours,
		&sheet.SubmittedAt,
		&sheet.ReviewedBy,
		&sheet.ReviewedAt,
		&sheet.CreatedAt,
		&sheet.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sheet, nil
}

func scanEntry(row pgx.Row) (*domain.TimesheetEntry, error) {
	var entry domain.TimesheetEntry
	if err := row.Scan(
		&entry.ID,
		&entry.TimesheetID,
		&entry.EntryDate,
		&entry.Task,
		&entry.Hours,
		&entry.Description,
		&entry.OvertimeHours,
		&entry.OvertimeStatus,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
