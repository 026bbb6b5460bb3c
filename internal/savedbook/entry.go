package savedbook

import (
	"errors"
	"time"

	"bookfinder/internal/book"
)

// ErrBookIDRequired is a local validation failure raised before any store call.
var ErrBookIDRequired = errors.New("book id is required")

// Entry is a user's bookmark of a canonical book. Entries are created and
// removed, never updated. Book is nil when the joined row no longer exists.
type Entry struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Book      *book.Book `json:"book,omitempty"`
}
