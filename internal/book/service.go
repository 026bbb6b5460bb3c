package book

import (
	"context"
	"errors"
	"strings"

	"bookfinder/internal/logger"
	"bookfinder/internal/platform/googlebooks"
)

// Service provides search and lookup over the metadata API.
type Service struct {
	meta MetadataClient
	repo Repository
	log  logger.Logger
}

// NewService creates a new book service.
func NewService(meta MetadataClient, repo Repository, log logger.Logger) *Service {
	return &Service{meta: meta, repo: repo, log: log}
}

// Search returns normalized results in provider order. On any failure the
// result is an empty slice alongside the error; the remote call is made at
// most once.
func (s *Service) Search(ctx context.Context, query string) ([]Book, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []Book{}, ErrEmptyQuery
	}

	res, err := s.meta.Search(ctx, q, googlebooks.DefaultMaxResults)
	if err != nil {
		s.log.Warn("book search failed", logger.String("query", q), logger.Error(err))
		return []Book{}, err
	}
	return Normalize(res.Items), nil
}

// Get fetches one volume from the provider.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Book{}, ErrNotFound
	}

	v, err := s.meta.Volume(ctx, id)
	if err != nil {
		if errors.Is(err, googlebooks.ErrVolumeNotFound) {
			return Book{}, ErrNotFound
		}
		s.log.Warn("book lookup failed", logger.String("book_id", id), logger.Error(err))
		return Book{}, err
	}

	b, ok := FromVolume(*v)
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// Ensure returns the stored row for id, fetching it from the provider and
// upserting it first when the books table does not have it yet.
func (s *Service) Ensure(ctx context.Context, id string) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, err
	}

	b, err = s.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if err := s.repo.Upsert(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}
