package auth

import (
	"context"
	"time"
)

type UserRepository interface {
	// Create inserts the user and its empty profile row. A duplicate email
	// yields ErrEmailTaken.
	Create(ctx context.Context, email, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PutResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// Provider is the identity provider surface served over HTTP. Service
// implements it, Unavailable stands in when auth is not configured.
type Provider interface {
	SignUp(ctx context.Context, email, password string, client ClientInfo) (Tokens, error)
	SignIn(ctx context.Context, email, password string, client ClientInfo) (Tokens, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string, client ClientInfo) (Tokens, error)
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, resetToken, userID, password string) error
	VerifyAccessToken(ctx context.Context, token string) (userID, email string, err error)
}
