package auth

import (
	"time"

	"github.com/angelmondragon/wanderlust-backend/internal/users"
)

// SignupRequest captures a new account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Redirect string `json:"redirect,omitempty"`
}

// Session is produced by a successful signup or login.
type Session struct {
	AccessToken string         `json:"access_token"`
	SessionID   string         `json:"-"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *users.UserDTO `json:"user"`
}
