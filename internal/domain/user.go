package domain

import (
	"strings"
	"time"
)

// Profile is the account row that every other table hangs off.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	HourlyRate   float64
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName falls back to the local part of the email when no name is set.
func (p *Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}
