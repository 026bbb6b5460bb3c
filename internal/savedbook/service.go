package savedbook

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"bookfinder/internal/logger"
)

// Service reconciles a user's saved collection with the store.
type Service struct {
	repo  Repository
	books BookResolver
	log   logger.Logger
}

func NewService(repo Repository, books BookResolver, log logger.Logger) *Service {
	return &Service{repo: repo, books: books, log: log}
}

// List returns the user's entries in store order, skipping entries whose
// book has been deleted.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return []Entry{}, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Book == nil {
			s.log.Debug("skipping dangling saved entry",
				logger.String("entry_id", e.ID),
				logger.String("book_id", e.BookID))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Save bookmarks bookID for userID. Repeated saves create repeated entries.
func (s *Service) Save(ctx context.Context, userID, bookID string) (Entry, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return Entry{}, ErrBookIDRequired
	}

	b, err := s.books.Ensure(ctx, bookID)
	if err != nil {
		return Entry{}, err
	}

	e, err := s.repo.Insert(ctx, userID, b.ID)
	if err != nil {
		return Entry{}, err
	}
	e.Book = &b
	return e, nil
}

// Remove deletes the entry when userID owns it. An unknown id succeeds.
func (s *Service) Remove(ctx context.Context, userID, entryID string) error {
	if _, err := uuid.Parse(entryID); err != nil {
		// Not a row id the store could hold.
		return nil
	}
	return s.repo.Delete(ctx, userID, entryID)
}
