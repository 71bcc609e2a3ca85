package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
)

type idSeq struct {
	mu sync.Mutex
	n  int
}

func (s *idSeq) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

// profiles

type fakeProfileRepo struct {
	ids  idSeq
	byID map[string]*domain.Profile
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	for _, existing := range r.byID {
		if existing.Email == p.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"}
		}
	}
	if p.ID == "" {
		p.ID = r.ids.next("profile")
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	if _, ok := r.byID[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, p := range r.byID {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range r.byID {
		for _, role := range roles {
			if p.Role == role {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

// messages

type fakeMessageRepo struct {
	ids  idSeq
	rows map[string]*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{rows: make(map[string]*domain.Message)}
}

func (r *fakeMessageRepo) ListByRoom(_ context.Context, roomID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.rows {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	if m, ok := r.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	msg.ID = r.ids.next("msg")
	msg.CreatedAt = time.Now()
	cp := *msg
	r.rows[msg.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, msg *domain.Message) error {
	row, ok := r.rows[msg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Content = msg.Content
	row.Edited = msg.Edited
	return nil
}

func (r *fakeMessageRepo) RenameSender(_ context.Context, senderID, name string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.rows {
		if m.SenderID == senderID && m.SenderName != name {
			m.SenderName = name
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

// boards and tasks

type fakeBoardRepo struct {
	ids  idSeq
	rows map[string]*domain.Board
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{rows: make(map[string]*domain.Board)}
}

func (r *fakeBoardRepo) Create(_ context.Context, b *domain.Board) error {
	b.ID = r.ids.next("board")
	cp := *b
	r.rows[b.ID] = &cp
	return nil
}

func (r *fakeBoardRepo) GetByID(_ context.Context, id string) (*domain.Board, error) {
	if b, ok := r.rows[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeBoardRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Board, error) {
	var out []domain.Board
	for _, b := range r.rows {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) Delete(_ context.Context, id, ownerID string) error {
	b, ok := r.rows[id]
	if !ok || b.OwnerID != ownerID {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

type fakeTaskRepo struct {
	ids       idSeq
	rows      map[string]*domain.Task
	markCalls int
	now       func() time.Time
}

func newFakeTaskRepo(now func() time.Time) *fakeTaskRepo {
	return &fakeTaskRepo{rows: make(map[string]*domain.Task), now: now}
}

func (r *fakeTaskRepo) put(t domain.Task) {
	cp := t
	r.rows[t.ID] = &cp
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) error {
	t.ID = r.ids.next("task")
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	r.put(*t)
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *domain.Task) error {
	if _, ok := r.rows[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = r.now()
	r.put(*t)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := r.rows[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTaskRepo) ListByBoard(_ context.Context, boardID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.rows {
		if t.BoardID == boardID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) ListBacklogCandidates(_ context.Context) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.rows {
		if !t.Backlog && !t.Completed && t.Duration != "" {
			out = append(out, *t)
		}
	}
	return out, nil
}

// MarkBacklog mirrors the conditional UPDATE ... WHERE backlog=false AND completed=false.
func (r *fakeTaskRepo) MarkBacklog(_ context.Context, id string) (bool, error) {
	r.markCalls++
	t, ok := r.rows[id]
	if !ok || t.Backlog || t.Completed {
		return false, nil
	}
	t.Backlog = true
	return true, nil
}

func (r *fakeTaskRepo) Complete(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	now := r.now()
	t.Completed = true
	t.Backlog = false
	t.Status = domain.TaskStatusDone
	t.CompletedAt = &now
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

// timesheets

type fakeTimesheetRepo struct {
	ids     idSeq
	sheets  map[string]*domain.Timesheet
	entries map[string]*domain.TimesheetEntry
}

func newFakeTimesheetRepo() *fakeTimesheetRepo {
	return &fakeTimesheetRepo{
		sheets:  make(map[string]*domain.Timesheet),
		entries: make(map[string]*domain.TimesheetEntry),
	}
}

func (r *fakeTimesheetRepo) GetOrCreate(_ context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error) {
	for _, s := range r.sheets {
		if s.UserID == userID && s.WeekStart.Equal(weekStart) {
			cp := *s
			return &cp, nil
		}
	}
	s := &domain.Timesheet{ID: r.ids.next("sheet"), UserID: userID, WeekStart: weekStart, Status: domain.TimesheetStatusDraft}
	r.sheets[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *fakeTimesheetRepo) GetByID(_ context.Context, id string) (*domain.Timesheet, error) {
	if s, ok := r.sheets[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTimesheetRepo) ListByStatusAndWeek(_ context.Context, status domain.TimesheetStatus, weekStart *time.Time) ([]domain.Timesheet, error) {
	var out []domain.Timesheet
	for _, s := range r.sheets {
		if s.Status != status {
			continue
		}
		if weekStart != nil && !s.WeekStart.Equal(*weekStart) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTimesheetRepo) UpdateStatus(_ context.Context, sheet *domain.Timesheet) error {
	s, ok := r.sheets[sheet.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Status = sheet.Status
	s.TotalHours = sheet.TotalHours
	s.SubmittedAt = sheet.SubmittedAt
	s.ReviewedBy = sheet.ReviewedBy
	s.ReviewedAt = sheet.ReviewedAt
	return nil
}

func (r *fakeTimesheetRepo) UpdateTotal(_ context.Context, id string, total float64) error {
	s, ok := r.sheets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.TotalHours = total
	return nil
}

func (r *fakeTimesheetRepo) ListEntries(_ context.Context, timesheetID string) ([]domain.TimesheetEntry, error) {
	var out []domain.TimesheetEntry
	for _, e := range r.entries {
		if e.TimesheetID == timesheetID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.Before(out[j].EntryDate) })
	return out, nil
}

func (r *fakeTimesheetRepo) GetEntry(_ context.Context, id string) (*domain.TimesheetEntry, error) {
	if e, ok := r.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

// UpsertEntry mirrors ON CONFLICT (timesheet_id, entry_date) DO UPDATE.
func (r *fakeTimesheetRepo) UpsertEntry(_ context.Context, entry *domain.TimesheetEntry) error {
	for _, e := range r.entries {
		if e.TimesheetID == entry.TimesheetID && e.EntryDate.Equal(entry.EntryDate) {
			entry.ID = e.ID
			*e = *entry
			return nil
		}
	}
	entry.ID = r.ids.next("entry")
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *fakeTimesheetRepo) DeleteEntry(_ context.Context, id string) error {
	if _, ok := r.entries[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeTimesheetRepo) ListPendingOvertime(_ context.Context) ([]domain.OvertimeRequest, error) {
	var out []domain.OvertimeRequest
	for _, e := range r.entries {
		if e.OvertimeStatus == domain.OvertimeStatusPending {
			out = append(out, domain.OvertimeRequest{Entry: *e, UserID: r.sheets[e.TimesheetID].UserID})
		}
	}
	return out, nil
}

func (r *fakeTimesheetRepo) SetOvertimeStatus(_ context.Context, entryID string, status domain.OvertimeStatus) error {
	e, ok := r.entries[entryID]
	if !ok {
		return pgx.ErrNoRows
	}
	e.OvertimeStatus = status
	return nil
}

// payroll

type fakePayrollRepo struct {
	generated map[string]bool
	records   map[string]*domain.PayrollRecord
}

func newFakePayrollRepo(records ...domain.PayrollRecord) *fakePayrollRepo {
	r := &fakePayrollRepo{generated: make(map[string]bool), records: make(map[string]*domain.PayrollRecord)}
	for i := range records {
		rec := records[i]
		r.records[rec.ID] = &rec
	}
	return r
}

func (r *fakePayrollRepo) Generate(_ context.Context, cutoff domain.Cutoff) (int, error) {
	if r.generated[cutoff.String()] {
		return 0, &pgconn.PgError{Code: "23505", ConstraintName: "unique_user_cutoff"}
	}
	r.generated[cutoff.String()] = true
	return 2, nil
}

func (r *fakePayrollRepo) List(_ context.Context, filter repository.PayrollFilter) ([]domain.PayrollRecord, error) {
	var out []domain.PayrollRecord
	for _, rec := range r.records {
		if filter.Cutoff != nil && (!rec.CutoffStart.Equal(filter.Cutoff.Start) || !rec.CutoffEnd.Equal(filter.Cutoff.End)) {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePayrollRepo) GetByID(_ context.Context, id string) (*domain.PayrollRecord, error) {
	if rec, ok := r.records[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePayrollRepo) MarkPaid(_ context.Context, id string) (*domain.PayrollRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if rec.Status != domain.PayrollStatusPaid {
		now := time.Now()
		rec.Status = domain.PayrollStatusPaid
		rec.PaidAt = &now
	}
	cp := *rec
	return &cp, nil
}

func (r *fakePayrollRepo) MarkCutoffPaid(_ context.Context, cutoff domain.Cutoff) (int64, error) {
	var n int64
	for _, rec := range r.records {
		if rec.CutoffStart.Equal(cutoff.Start) && rec.CutoffEnd.Equal(cutoff.End) && rec.Status == domain.PayrollStatusPending {
			rec.Status = domain.PayrollStatusPaid
			n++
		}
	}
	return n, nil
}

// tickets

type fakeTicketRepo struct {
	ids  idSeq
	rows map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{rows: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	t.ID = r.ids.next("ticket")
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	if _, ok := r.rows[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if t, ok := r.rows[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.rows {
		if filter.ParticipantID != nil {
			pid := *filter.ParticipantID
			if t.UserID != pid && (t.AssigneeID == nil || *t.AssigneeID != pid) {
				continue
			}
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCommentRepo struct {
	ids  idSeq
	rows []domain.TicketComment
}

func (r *fakeCommentRepo) Create(_ context.Context, c *domain.TicketComment) error {
	c.ID = r.ids.next("comment")
	r.rows = append(r.rows, *c)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, c := range r.rows {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

// notifications

type fakeNotificationRepo struct {
	mu   sync.Mutex
	ids  idSeq
	rows []domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.ids.next("note")
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.rows {
		if r.rows[i].UserID == userID && !r.rows[i].Read {
			r.rows[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, n := range r.rows {
		out = append(out, n.UserID)
	}
	return out
}

// finance

type fakeFinanceRepo struct {
	mu         sync.Mutex
	sales      []domain.Sale
	expenses   []domain.Expense
	references map[string]bool
}

func newFakeFinanceRepo() *fakeFinanceRepo {
	return &fakeFinanceRepo{references: make(map[string]bool)}
}

func (r *fakeFinanceRepo) CreateSale(_ context.Context, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.references["sale:"+sale.Reference] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "sales_reference_key"}
	}
	r.references["sale:"+sale.Reference] = true
	r.sales = append(r.sales, *sale)
	return nil
}

func (r *fakeFinanceRepo) CreateExpense(_ context.Context, expense *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.references["expense:"+expense.Reference] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "expenses_reference_key"}
	}
	r.references["expense:"+expense.Reference] = true
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *fakeFinanceRepo) SumSales(_ context.Context, from, to time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0.0
	for _, s := range r.sales {
		if !s.SaleDate.Before(from) && s.SaleDate.Before(to) {
			total += s.TotalAmount
		}
	}
	return total, nil
}

func (r *fakeFinanceRepo) SumExpenses(_ context.Context, department string, from, to time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0.0
	for _, e := range r.expenses {
		if e.Department == department && !e.ExpenseDate.Before(from) && e.ExpenseDate.Before(to) {
			total += e.Amount
		}
	}
	return total, nil
}

// documents

type fakeDocumentRepo struct {
	ids  idSeq
	rows map[string]*domain.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{rows: make(map[string]*domain.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *domain.Document) error {
	d.ID = r.ids.next("doc")
	cp := *d
	r.rows[d.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, d *domain.Document) error {
	row, ok := r.rows[d.ID]
	if !ok || row.UserID != d.UserID {
		return pgx.ErrNoRows
	}
	cp := *d
	r.rows[d.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if d, ok := r.rows[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDocumentRepo) ListByUser(_ context.Context, userID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range r.rows {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id, userID string) error {
	d, ok := r.rows[id]
	if !ok || d.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}
