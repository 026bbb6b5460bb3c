package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookfinder/internal/platform/postgres"
)

const columns = `id, email, username, avatar_url, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func scan(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	const query = `SELECT ` + columns + ` FROM profiles WHERE id = $1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scan(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, postgres.Wrap("get profile", err)
	}
	return p, nil
}

func (r *PostgresRepo) UpsertUsername(ctx context.Context, userID, email, username string) (Profile, error) {
	const query = `
		INSERT INTO profiles (id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			updated_at = now()
		RETURNING ` + columns

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scan(r.db.QueryRow(ctx, query, userID, email, username))
	if err != nil {
		return Profile{}, postgres.Wrap("upsert profile", err)
	}
	return p, nil
}

type UnavailableRepo struct{}

func (UnavailableRepo) GetByID(context.Context, string) (Profile, error) {
	return Profile{}, ErrNotFound
}

func (UnavailableRepo) UpsertUsername(context.Context, string, string, string) (Profile, error) {
	return Profile{}, postgres.ErrUnavailable
}
