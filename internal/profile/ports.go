package profile

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (Profile, error)
	// UpsertUsername creates the row when it is missing.
	UpsertUsername(ctx context.Context, userID, email, username string) (Profile, error)
}
