package domain

import (
	"fmt"
	"time"
)

// PayrollStatus enumerates payment states.
type PayrollStatus string

const (
	PayrollStatusPending PayrollStatus = "Pending"
	PayrollStatusPaid    PayrollStatus = "Paid"
)

// PayrollRecord is produced by the generate_payroll procedure; it is never
// regenerated for the same user and cutoff.
type PayrollRecord struct {
	ID            string
	UserID        string
	EmployeeName  string
	HourlyRate    float64
	CutoffStart   time.Time
	CutoffEnd     time.Time
	TotalHours    float64
	OvertimeHours float64
	RegularPay    float64
	OvertimePay   float64
	TotalPay      float64
	Deductions    float64
	NetPay        float64
	Status        PayrollStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// CutoffHalf selects the half of the month.
type CutoffHalf string

const (
	CutoffFirst  CutoffHalf = "first"
	CutoffSecond CutoffHalf = "second"
)

// Cutoff is a half-month payroll window, inclusive on both ends.
type Cutoff struct {
	Start time.Time
	End   time.Time
}

// String renders the window as "2006-01-02..2006-01-15".
func (c Cutoff) String() string {
	return c.Start.Format(DateLayout) + ".." + c.End.Format(DateLayout)
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CutoffFor returns the first (1-15) or second (16-last day) cutoff of a month.
func CutoffFor(year int, month time.Month, half CutoffHalf) (Cutoff, error) {
	if month < time.January || month > time.December {
		return Cutoff{}, fmt.Errorf("invalid month %d", month)
	}
	switch half {
	case CutoffFirst:
		return Cutoff{
			Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		}, nil
	case CutoffSecond:
		lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		return Cutoff{
			Start: time.Date(year, month, 16, 0, 0, 0, 0, time.UTC),
			End:   lastDay,
		}, nil
	default:
		return Cutoff{}, fmt.Errorf("invalid cutoff half %q", half)
	}
}

// CutoffContaining returns the cutoff window that contains t.
func CutoffContaining(t time.Time) Cutoff {
	half := CutoffFirst
	if t.Day() > 15 {
		half = CutoffSecond
	}
	c, _ := CutoffFor(t.Year(), t.Month(), half)
	return c
}
