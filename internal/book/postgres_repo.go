package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookfinder/internal/platform/postgres"
)

// Columns shared with savedbook's joined read.
const Columns = `b.id, b.title, b.authors, COALESCE(b.publisher, ''), COALESCE(b.published_date, ''),
	COALESCE(b.description, ''), b.page_count, COALESCE(b.categories, '{}'), COALESCE(b.language, ''),
	COALESCE(b.thumbnail, ''), COALESCE(b.isbn, ''), COALESCE(b.preview_link, '')`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

// ScanTargets returns destinations matching Columns, in order.
func ScanTargets(b *Book) []any {
	return []any{
		&b.ID, &b.Title, &b.Authors, &b.Publisher, &b.PublishedDate,
		&b.Description, &b.PageCount, &b.Categories, &b.Language,
		&b.Thumbnail, &b.ISBN, &b.PreviewLink,
	}
}

// Tidy turns empty arrays read from the database back into nil.
func Tidy(b *Book) {
	if len(b.Categories) == 0 {
		b.Categories = nil
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{UnknownAuthor}
	}
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	const query = `SELECT ` + Columns + ` FROM books b WHERE b.id = $1`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var b Book
	if err := r.db.QueryRow(ctx, query, id).Scan(ScanTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, postgres.Wrap("get book", err)
	}
	Tidy(&b)
	return b, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (id, title, authors, publisher, published_date, description,
		                   page_count, categories, language, thumbnail, isbn, preview_link)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
		        $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			authors = EXCLUDED.authors,
			publisher = EXCLUDED.publisher,
			published_date = EXCLUDED.published_date,
			description = EXCLUDED.description,
			page_count = EXCLUDED.page_count,
			categories = EXCLUDED.categories,
			language = EXCLUDED.language,
			thumbnail = EXCLUDED.thumbnail,
			isbn = EXCLUDED.isbn,
			preview_link = EXCLUDED.preview_link`

	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.Authors, b.Publisher, b.PublishedDate, b.Description,
		b.PageCount, b.Categories, b.Language, b.Thumbnail, b.ISBN, b.PreviewLink,
	)
	return postgres.Wrap("upsert book", err)
}

// UnavailableRepo stands in for PostgresRepo when no database is configured.
type UnavailableRepo struct{}

func (UnavailableRepo) GetByID(context.Context, string) (Book, error) { return Book{}, ErrNotFound }
func (UnavailableRepo) Upsert(context.Context, *Book) error           { return postgres.ErrUnavailable }
