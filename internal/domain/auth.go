package domain

import "time"

// Role drives which dashboard sections and approval actions a profile can use.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanReview reports whether r may approve or reject timesheets and overtime.
func (r Role) CanReview() bool {
	return r == RoleHR || r == RoleManager || r == RoleAdmin
}

// CanManagePayroll reports whether r may generate and settle payroll.
func (r Role) CanManagePayroll() bool {
	return r == RoleHR || r == RoleAdmin
}

// IsStaff reports whether r sees every ticket rather than only its own.
func (r Role) IsStaff() bool {
	return r != RoleEmployee
}

// Session represents an issued access token.
type Session struct {
	Token     string
	ProfileID string
	Role      Role
	ExpiresAt time.Time
}
