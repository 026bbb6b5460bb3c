package savedbook

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookfinder/internal/book"
	"bookfinder/internal/platform/postgres"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	// has_book is false for entries whose book row is gone.
	const query = `
		SELECT s.id, s.book_id, s.user_id, s.created_at,
		       b.id IS NOT NULL AS has_book,
		       COALESCE(b.id, ''), COALESCE(b.title, ''), COALESCE(b.authors, '{}'),
		       COALESCE(b.publisher, ''), COALESCE(b.published_date, ''), COALESCE(b.description, ''),
		       b.page_count, COALESCE(b.categories, '{}'), COALESCE(b.language, ''),
		       COALESCE(b.thumbnail, ''), COALESCE(b.isbn, ''), COALESCE(b.preview_link, '')
		FROM saved_books s
		LEFT JOIN books b ON b.id = s.book_id
		WHERE s.user_id = $1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, postgres.Wrap("list saved books", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			b       book.Book
			hasBook bool
		)
		if err := rows.Scan(
			&e.ID, &e.BookID, &e.UserID, &e.CreatedAt,
			&hasBook,
			&b.ID, &b.Title, &b.Authors,
			&b.Publisher, &b.PublishedDate, &b.Description,
			&b.PageCount, &b.Categories, &b.Language,
			&b.Thumbnail, &b.ISBN, &b.PreviewLink,
		); err != nil {
			return nil, postgres.Wrap("scan saved book", err)
		}
		if hasBook {
			book.Tidy(&b)
			e.Book = &b
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Wrap("list saved books", err)
	}
	return out, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, userID, bookID string) (Entry, error) {
	const query = `
		INSERT INTO saved_books (book_id, user_id)
		VALUES ($1, $2)
		RETURNING id, book_id, user_id, created_at`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var e Entry
	if err := r.db.QueryRow(ctx, query, bookID, userID).Scan(&e.ID, &e.BookID, &e.UserID, &e.CreatedAt); err != nil {
		return Entry{}, postgres.Wrap("save book", err)
	}
	return e, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, entryID string) error {
	const query = `DELETE FROM saved_books WHERE id = $1 AND user_id = $2`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, query, entryID, userID)
	return postgres.Wrap("remove saved book", err)
}

// UnavailableRepo is used when no database is configured: reads are empty,
// writes fail with postgres.ErrUnavailable.
type UnavailableRepo struct{}

func (UnavailableRepo) List(context.Context, string) ([]Entry, error) { return []Entry{}, nil }

func (UnavailableRepo) Insert(context.Context, string, string) (Entry, error) {
	return Entry{}, postgres.ErrUnavailable
}

func (UnavailableRepo) Delete(context.Context, string, string) error { return postgres.ErrUnavailable }
