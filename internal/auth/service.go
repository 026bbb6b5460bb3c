package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookfinder/internal/logger"
	"bookfinder/internal/mailer"
	"bookfinder/internal/tokenstore"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultResetTTL   = time.Hour
)

// ResetPasswordPath is the web page that reset links point at.
const ResetPasswordPath = "/auth/reset-password"

type Options struct {
	Secret     string
	PublicURL  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

type Service struct {
	opts     Options
	users    UserRepository
	sessions SessionRepository
	tokens   TokenStore
	mail     mailer.Sender
	log      logger.Logger
	now      func() time.Time
}

func NewService(opts Options, users UserRepository, sessions SessionRepository, tokens TokenStore, mail mailer.Sender, log logger.Logger) *Service {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = DefaultResetTTL
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &Service{
		opts:     opts,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mail:     mail,
		log:      log,
		now:      time.Now,
	}
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errBadEmail
	}
	return email, nil
}

func checkPassword(password string) error {
	if len([]rune(password)) < MinPasswordLen {
		return errWeakPass
	}
	return nil
}

func (s *Service) SignUp(ctx context.Context, email, password string, client ClientInfo) (Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Tokens{}, err
	}
	if err := checkPassword(password); err != nil {
		return Tokens{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Tokens{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Tokens{}, errEmailTaken
		}
		return Tokens{}, err
	}
	s.log.Info("user signed up", logger.String("user_id", u.ID))

	return s.issue(ctx, u, client)
}

func (s *Service) SignIn(ctx context.Context, email, password string, client ClientInfo) (Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Tokens{}, errBadLogin
		}
		return Tokens{}, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return Tokens{}, errBadLogin
	}
	return s.issue(ctx, u, client)
}

// SignOut revokes the access token until it expires and drops the refresh
// session. Either token may be empty.
func (s *Service) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if claims, err := ParseToken(s.opts.Secret, accessToken); err == nil && claims.ExpiresAt != nil {
			if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now())); err != nil {
				return err
			}
		}
	}
	if refreshToken != "" {
		if err := s.sessions.DeleteByTokenHash(ctx, hashToken(refreshToken)); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

// Refresh rotates the refresh session: the presented token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, errBadToken
	}
	tokenHash := hashToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Tokens{}, errBadToken
		}
		return Tokens{}, err
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Tokens{}, errBadToken
		}
		return Tokens{}, err
	}

	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return Tokens{}, err
	}
	return s.issue(ctx, u, client)
}

// ResetPassword mails a single-use recovery link. Unknown addresses report
// success so the endpoint cannot be used to probe accounts.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.log.Debug("password reset for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.tokens.PutResetToken(ctx, token, u.ID, s.opts.ResetTTL); err != nil {
		return err
	}

	link := s.opts.PublicURL + ResetPasswordPath + "?token=" + token
	return s.mail.Send(ctx, mailer.Message{
		To:      []string{u.Email},
		Subject: "Reset your BookFinder password",
		Body: "Someone asked to reset the password for this account.\n\n" +
			"Follow this link within the hour to choose a new one:\n" + link + "\n\n" +
			"From the command line, run:\n" +
			"bookfinder update-password --token " + token + "\n\n" +
			"If it was not you, ignore this message.\n",
	})
}

// UpdatePassword sets a new password for the owner of resetToken or, when
// resetToken is empty, for the signed-in userID. Existing refresh sessions
// are dropped.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, userID, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}

	if resetToken != "" {
		owner, err := s.tokens.ConsumeResetToken(ctx, resetToken)
		if err != nil {
			if errors.Is(err, tokenstore.ErrNotFound) {
				return errBadToken
			}
			return err
		}
		userID = owner
	}
	if userID == "" {
		return errBadToken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errBadToken
		}
		return err
	}
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		s.log.Warn("drop sessions after password change", logger.String("user_id", userID), logger.Error(err))
	}
	s.log.Info("password updated", logger.String("user_id", userID))
	return nil
}

func (s *Service) VerifyAccessToken(ctx context.Context, token string) (string, string, error) {
	claims, err := ParseToken(s.opts.Secret, token)
	if err != nil {
		return "", "", errBadToken
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", "", err
	}
	if revoked {
		return "", "", errBadToken
	}
	return claims.Sub, claims.Email, nil
}

func (s *Service) issue(ctx context.Context, u User, client ClientInfo) (Tokens, error) {
	accessToken, _, err := GenerateToken(s.opts.Secret, u.ID, u.Email, s.opts.AccessTTL)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh token: %w", err)
	}

	sess := &Session{
		UserID:           u.ID,
		RefreshTokenHash: hashToken(refreshToken),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
		ExpiresAt:        s.now().Add(s.opts.RefreshTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.opts.AccessTTL.Seconds()),
		User:         Identity{ID: u.ID, Email: u.Email},
	}, nil
}

// Unavailable is the provider used when DB_DSN or JWT_SECRET is missing.
// Every call fails with ErrProviderUnavailable and no token verifies.
type Unavailable struct{}

func (Unavailable) SignUp(context.Context, string, string, ClientInfo) (Tokens, error) {
	return Tokens{}, errUnavailable
}

func (Unavailable) SignIn(context.Context, string, string, ClientInfo) (Tokens, error) {
	return Tokens{}, errUnavailable
}

func (Unavailable) SignOut(context.Context, string, string) error { return errUnavailable }

func (Unavailable) Refresh(context.Context, string, ClientInfo) (Tokens, error) {
	return Tokens{}, errUnavailable
}

func (Unavailable) ResetPassword(context.Context, string) error { return errUnavailable }

func (Unavailable) UpdatePassword(context.Context, string, string, string) error {
	return errUnavailable
}

func (Unavailable) VerifyAccessToken(context.Context, string) (string, string, error) {
	return "", "", errUnavailable
}

var (
	_ Provider = (*Service)(nil)
	_ Provider = Unavailable{}
)
