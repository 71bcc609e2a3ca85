package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// PayrollService wraps payroll generation and settlement.
type PayrollService struct {
	payroll    repository.PayrollRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PayrollDependencies bundles collaborators for the payroll service.
type PayrollDependencies struct {
	PayrollRepo repository.PayrollRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewPayrollService constructs the service.
func NewPayrollService(deps PayrollDependencies) *PayrollService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollService{payroll: deps.PayrollRepo, dispatcher: deps.Dispatcher, logger: logger}
}

// Cutoff resolves a half-month window.
func (s *PayrollService) Cutoff(year int, month time.Month, half domain.CutoffHalf) (domain.Cutoff, error) {
	cutoff, err := domain.CutoffFor(year, month, half)
	if err != nil {
		return domain.Cutoff{}, apperrors.NewValidationError(err.Error(), map[string]any{"year": year, "month": int(month), "half": half})
	}
	return cutoff, nil
}

// Generate runs the payroll procedure for the cutoff. A window that was
// already generated is a conflict; the procedure never overwrites records.
func (s *PayrollService) Generate(ctx context.Context, cutoff domain.Cutoff) (int, error) {
	inserted, err := s.payroll.Generate(ctx, cutoff)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return 0, apperrors.NewConflict("payroll already generated for this cutoff", map[string]any{
				"cutoff_start": cutoff.Start.Format(domain.DateLayout),
				"cutoff_end":   cutoff.End.Format(domain.DateLayout),
				"constraint":   apperrors.ConstraintName(err),
			})
		}
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("payroll generated",
		zap.String("cutoff", cutoff.String()),
		zap.Int("records", inserted))
	return inserted, nil
}

// List returns payroll records matching the filter.
func (s *PayrollService) List(ctx context.Context, filter repository.PayrollFilter) ([]domain.PayrollRecord, error) {
	if filter.Status != nil && *filter.Status != domain.PayrollStatusPending && *filter.Status != domain.PayrollStatusPaid {
		return nil, apperrors.NewValidationError("invalid payroll status", map[string]any{"status": *filter.Status})
	}
	records, err := s.payroll.List(ctx, filter)
	return records, apperrors.MapError(err)
}

// MarkPaid settles one record and notifies the employee.
func (s *PayrollService) MarkPaid(ctx context.Context, actorID, recordID string) (*domain.PayrollRecord, error) {
	before, err := s.payroll.GetByID(ctx, recordID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "payroll record", map[string]any{"record_id": recordID})
	}
	record, err := s.payroll.MarkPaid(ctx, recordID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "payroll record", map[string]any{"record_id": recordID})
	}
	if before.Status != domain.PayrollStatusPaid {
		s.announcePaid(ctx, actorID, record)
	}
	return record, nil
}

// MarkCutoffPaid settles every pending record of the cutoff.
func (s *PayrollService) MarkCutoffPaid(ctx context.Context, actorID string, cutoff domain.Cutoff) (int64, error) {
	pending := domain.PayrollStatusPending
	records, err := s.payroll.List(ctx, repository.PayrollFilter{Cutoff: &cutoff, Status: &pending})
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	updated, err := s.payroll.MarkCutoffPaid(ctx, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	for i := range records {
		s.announcePaid(ctx, actorID, &records[i])
	}
	return updated, nil
}

func (s *PayrollService) announcePaid(ctx context.Context, actorID string, record *domain.PayrollRecord) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventPayrollPaid,
		SubjectID: record.ID,
		ActorID:   actorID,
		Payload: events.PayrollPaidPayload{
			UserID: record.UserID,
			Cutoff: domain.Cutoff{Start: record.CutoffStart, End: record.CutoffEnd},
			NetPay: record.NetPay,
		},
	})
}
