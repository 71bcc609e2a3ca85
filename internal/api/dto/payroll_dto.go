package dto

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// CutoffRequest selects a half-month window.
type CutoffRequest struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Half  domain.CutoffHalf `json:"half"`
}

// PayrollRecordResponse describes one payslip row.
type PayrollRecordResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	EmployeeName  string               `json:"employee_name"`
	HourlyRate    float64              `json:"hourly_rate"`
	CutoffStart   string               `json:"cutoff_start"`
	CutoffEnd     string               `json:"cutoff_end"`
	TotalHours    float64              `json:"total_hours"`
	OvertimeHours float64              `json:"overtime_hours"`
	RegularPay    float64              `json:"regular_pay"`
	OvertimePay   float64              `json:"overtime_pay"`
	TotalPay      float64              `json:"total_pay"`
	Deductions    float64              `json:"deductions"`
	NetPay        float64              `json:"net_pay"`
	Status        domain.PayrollStatus `json:"status"`
	PaidAt        *time.Time           `json:"paid_at"`
}
