package profile

import (
	"context"
	"errors"

	"bookfinder/internal/logger"
)

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get returns the user's profile. A user without a profile row gets an
// empty one carrying the account email.
func (s *Service) Get(ctx context.Context, userID, email string) (Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Profile{ID: userID, Email: email}, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Update applies cmd. Only the username is writable.
func (s *Service) Update(ctx context.Context, userID, email string, cmd UpdateCommand) (Profile, error) {
	if cmd.Username == nil {
		return s.Get(ctx, userID, email)
	}

	username, err := NormalizeUsername(*cmd.Username)
	if err != nil {
		return Profile{}, err
	}

	p, err := s.repo.UpsertUsername(ctx, userID, email, username)
	if err != nil {
		return Profile{}, err
	}
	s.log.Info("profile updated", logger.String("user_id", userID))
	return p, nil
}
