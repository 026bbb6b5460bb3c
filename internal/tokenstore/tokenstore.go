// Package tokenstore keeps short-lived auth state: revoked access token ids
// and single-use password reset tokens.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a reset token is unknown, expired or already used.
var ErrNotFound = errors.New("token not found")

type Store interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PutResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	// ConsumeResetToken returns the owner of token and deletes it atomically.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	Ping(ctx context.Context) error
}

const (
	KeyPrefixRevoked = "bookfinder:revoked:"
	KeyPrefixReset   = "bookfinder:reset:"
)

func RevokedKey(jti string) string { return KeyPrefixRevoked + jti }

func ResetKey(token string) string { return KeyPrefixReset + token }
