package domain

import (
	"context"
	"time"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, rawToken string) (*Claims, error)
	Me(ctx context.Context) (*User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	ListUsers(ctx context.Context, req ListUsersRequest) ([]User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	// DeleteUser deactivates the account; records keep pointing at it.
	DeleteUser(ctx context.Context, id string) error

	// EnsureBootstrapAdmin creates the first administrator when no user exists.
	EnsureBootstrapAdmin(ctx context.Context, email, password, name string) (*User, error)
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Claims is the identity carried by an access token.
type Claims struct {
	TokenID string
	UserID  string
	Email   string
	Role    Role
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ListUsersRequest struct {
	Role   string
	Active *bool
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}
