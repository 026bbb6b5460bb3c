package profile

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidUsername = errors.New("username must be between 3 and 50 characters")
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
)

// Profile is the public face of a user account. Email mirrors the account
// and is never written through this package.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateCommand struct {
	Username *string `json:"username"`
}

// NormalizeUsername trims u and checks its length in characters.
func NormalizeUsername(u string) (string, error) {
	u = strings.TrimSpace(u)
	n := len([]rune(u))
	if n < MinUsernameLen || n > MaxUsernameLen {
		return "", ErrInvalidUsername
	}
	return u, nil
}
