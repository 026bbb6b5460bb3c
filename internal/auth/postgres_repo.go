package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookfinder/internal/platform/postgres"
)

const uniqueViolation = "23505"

type PostgresUserRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresUserRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresUserRepo {
	return &PostgresUserRepo{db: db, timeout: timeout}
}

func (r *PostgresUserRepo) Create(ctx context.Context, email, passwordHash string) (User, error) {
	const insertUser = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at`
	const insertProfile = `INSERT INTO profiles (id, email) VALUES ($1, $2)`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return User{}, postgres.Wrap("begin create user", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var u User
	if err := tx.QueryRow(ctx, insertUser, email, passwordHash).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, postgres.Wrap("create user", err)
	}

	if _, err := tx.Exec(ctx, insertProfile, u.ID, u.Email); err != nil {
		return User{}, postgres.Wrap("create profile", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return User{}, postgres.Wrap("commit create user", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) getBy(ctx context.Context, op, where string, arg string) (User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE ` + where + ` LIMIT 1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, postgres.Wrap(op, err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "get user by email", "email = $1", email)
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, "get user", "id = $1", id)
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return postgres.Wrap("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

type PostgresSessionRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresSessionRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db, timeout: timeout}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, s *Session) error {
	const query = `
		INSERT INTO auth_sessions (user_id, refresh_token_hash, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, last_used_at`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, query,
		s.UserID,
		s.RefreshTokenHash,
		s.UserAgent,
		s.IPAddress,
		s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt, &s.LastUsedAt)
	return postgres.Wrap("create session", err)
}

func (r *PostgresSessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	const query = `
		SELECT id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at
		FROM auth_sessions
		WHERE refresh_token_hash = $1 AND expires_at > now()
		LIMIT 1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var s Session
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&s.UserAgent,
		&s.IPAddress,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, postgres.Wrap("get session", err)
	}
	return s, nil
}

func (r *PostgresSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM auth_sessions WHERE refresh_token_hash = $1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return postgres.Wrap("delete session", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM auth_sessions WHERE user_id = $1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, query, userID)
	return postgres.Wrap("delete user sessions", err)
}

// CleanupExpired removes sessions past their expiry and reports how many.
func (r *PostgresSessionRepo) CleanupExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM auth_sessions WHERE expires_at <= now()`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, postgres.Wrap("cleanup sessions", err)
	}
	return tag.RowsAffected(), nil
}
