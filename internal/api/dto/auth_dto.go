package dto

import (
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// RegisterRequest payload for sign-up.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest payload for sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	FullName string  `json:"full_name"`
	Timezone *string `json:"timezone,omitempty"`
}

// ChangePasswordRequest payload for password updates.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ProfileResponse is the profile representation.
type ProfileResponse struct {
	UserID    string            `json:"user_id"`
	FullName  string            `json:"full_name"`
	Role      domain.GlobalRole `json:"role"`
	Verified  bool              `json:"verified"`
	Timezone  string            `json:"timezone"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AuthResponse carries a session token and the loaded profile.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}
