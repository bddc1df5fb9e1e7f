package dto

import (
	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/session"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest payload for new members.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	State      session.State    `json:"state"`
	User       *domain.Identity `json:"user,omitempty"`
	Profile    *domain.Profile  `json:"profile,omitempty"`
	IsAdmin    bool             `json:"is_admin"`
	RedirectTo string           `json:"redirect_to,omitempty"`
}

// UpdateProfileRequest edits display data. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=2048"`
}
