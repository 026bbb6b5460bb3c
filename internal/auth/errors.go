package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrWeakPassword        = errors.New("password too short")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Error is a rejection from the identity provider. Message is safe to show
// to the user; Err is one of the sentinels above.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(err error, message string) *Error {
	return &Error{Message: message, Err: err}
}

// Common rejections with the messages users see.
var (
	errBadLogin    = newError(ErrInvalidCredentials, "Invalid login credentials")
	errEmailTaken  = newError(ErrEmailTaken, "User already registered")
	errBadEmail    = newError(ErrInvalidEmail, "Please enter a valid email address")
	errWeakPass    = newError(ErrWeakPassword, "Password should be at least 6 characters")
	errBadToken    = newError(ErrInvalidToken, "Invalid or expired token")
	errUnavailable = newError(ErrProviderUnavailable, "Authentication is not configured on this server")
)
