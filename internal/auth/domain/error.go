package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUserExists         = errors.New("user_already_exists")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrWeakPassword       = errors.New("password_too_short")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTooManyAttempts    = errors.New("too_many_login_attempts")
	ErrInvalidID          = errors.New("invalid_id")
)
