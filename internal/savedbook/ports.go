package savedbook

import (
	"context"

	"bookfinder/internal/book"
)

// Repository defines the contract for the saved_books table.
type Repository interface {
	// List returns every entry owned by userID. Book is nil for dangling entries.
	List(ctx context.Context, userID string) ([]Entry, error)
	Insert(ctx context.Context, userID, bookID string) (Entry, error)
	// Delete removes entryID if userID owns it. Missing rows are not an error.
	Delete(ctx context.Context, userID, entryID string) error
}

// BookResolver makes sure the canonical book row exists before it is referenced.
type BookResolver interface {
	Ensure(ctx context.Context, id string) (book.Book, error)
}
