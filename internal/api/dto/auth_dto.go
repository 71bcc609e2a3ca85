package dto

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest payload for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest payload for PATCH /auth/me.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
}

// CreateProfileRequest is sent by the signup flow with service credentials.
type CreateProfileRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	HourlyRate  float64     `json:"hourly_rate"`
	CreatedAt   time.Time   `json:"created_at"`
}
