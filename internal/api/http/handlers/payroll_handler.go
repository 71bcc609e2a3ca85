package handlers

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// PayrollService is the payroll surface used by PayrollHandler.
type PayrollService interface {
	Cutoff(year int, month time.Month, half domain.CutoffHalf) (domain.Cutoff, error)
	Generate(ctx context.Context, cutoff domain.Cutoff) (int, error)
	List(ctx context.Context, filter repository.PayrollFilter) ([]domain.PayrollRecord, error)
	MarkPaid(ctx context.Context, actorID, recordID string) (*domain.PayrollRecord, error)
	MarkCutoffPaid(ctx context.Context, actorID string, cutoff domain.Cutoff) (int64, error)
}

// PayrollHandler exposes payroll generation and settlement. HR and admins only.
type PayrollHandler struct {
	service PayrollService
	now     func() time.Time
}

// NewPayrollHandler constructs handler.
func NewPayrollHandler(payroll PayrollService) *PayrollHandler {
	return &PayrollHandler{service: payroll, now: time.Now}
}

// cutoff resolves the requested window. An empty request means the cutoff
// containing today.
func (h *PayrollHandler) cutoff(req dto.CutoffRequest) (domain.Cutoff, error) {
	if req.Year == 0 && req.Month == 0 && req.Half == "" {
		return domain.CutoffContaining(h.now()), nil
	}
	return h.service.Cutoff(req.Year, time.Month(req.Month), req.Half)
}

// Generate POST /payroll/generate.
func (h *PayrollHandler) Generate(c *fiber.Ctx) error {
	var req dto.CutoffRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	cutoff, err := h.cutoff(req)
	if err != nil {
		return err
	}
	generated, err := h.service.Generate(c.UserContext(), cutoff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"cutoff_start": cutoff.Start.Format(domain.DateLayout),
		"cutoff_end":   cutoff.End.Format(domain.DateLayout),
		"generated":    generated,
	}})
}

// List GET /payroll?year=&month=&half=&status=&q=.
func (h *PayrollHandler) List(c *fiber.Ctx) error {
	records, err := h.list(c)
	if err != nil {
		return err
	}
	items := make([]dto.PayrollRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, payrollResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

var payrollExportHeader = []string{
	"Employee", "Cutoff Start", "Cutoff End", "Total Hours", "Overtime Hours",
	"Regular Pay", "Overtime Pay", "Deductions", "Net Pay", "Status",
}

// Export GET /payroll/export takes the List filters and answers a CSV sheet.
func (h *PayrollHandler) Export(c *fiber.Ctx) error {
	records, err := h.list(c)
	if err != nil {
		return err
	}
	c.Attachment("payroll_" + h.now().Format(domain.DateLayout) + ".csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")

	w := csv.NewWriter(c)
	if err := w.Write(payrollExportHeader); err != nil {
		return apperrors.NewInternalError(err)
	}
	for _, r := range records {
		name := r.EmployeeName
		if name == "" {
			name = "Unknown"
		}
		row := []string{
			name,
			r.CutoffStart.Format(domain.DateLayout),
			r.CutoffEnd.Format(domain.DateLayout),
			twoPlaces(r.TotalHours),
			twoPlaces(r.OvertimeHours),
			twoPlaces(r.RegularPay),
			twoPlaces(r.OvertimePay),
			twoPlaces(r.Deductions),
			twoPlaces(r.NetPay),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func twoPlaces(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (h *PayrollHandler) list(c *fiber.Ctx) ([]domain.PayrollRecord, error) {
	filter := repository.PayrollFilter{SearchTerm: strings.TrimSpace(c.Query("q"))}
	if c.Query("year") != "" || c.Query("month") != "" || c.Query("half") != "" {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			return nil, apperrors.NewValidationError("year must be a number", nil)
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil {
			return nil, apperrors.NewValidationError("month must be a number", nil)
		}
		cutoff, err := h.service.Cutoff(year, time.Month(month), domain.CutoffHalf(c.Query("half")))
		if err != nil {
			return nil, err
		}
		filter.Cutoff = &cutoff
	}
	if status := c.Query("status"); status != "" {
		s := domain.PayrollStatus(status)
		filter.Status = &s
	}
	return h.service.List(c.UserContext(), filter)
}

// MarkPaid POST /payroll/:id/paid.
func (h *PayrollHandler) MarkPaid(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	record, err := h.service.MarkPaid(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payrollResponse(record)})
}

// MarkCutoffPaid POST /payroll/cutoff/paid.
func (h *PayrollHandler) MarkCutoffPaid(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.CutoffRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	cutoff, err := h.cutoff(req)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkCutoffPaid(c.UserContext(), profile.ID, cutoff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}

func payrollResponse(r *domain.PayrollRecord) dto.PayrollRecordResponse {
	return dto.PayrollRecordResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		EmployeeName:  r.EmployeeName,
		HourlyRate:    r.HourlyRate,
		CutoffStart:   r.CutoffStart.Format(domain.DateLayout),
		CutoffEnd:     r.CutoffEnd.Format(domain.DateLayout),
		TotalHours:    r.TotalHours,
		OvertimeHours: r.OvertimeHours,
		RegularPay:    r.RegularPay,
		OvertimePay:   r.OvertimePay,
		TotalPay:      r.TotalPay,
		Deductions:    r.Deductions,
		NetPay:        r.NetPay,
		Status:        r.Status,
		PaidAt:        r.PaidAt,
	}
}
