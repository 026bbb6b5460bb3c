package book

import (
	"context"

	"bookfinder/internal/platform/googlebooks"
)

// MetadataClient is the read-only book metadata API.
type MetadataClient interface {
	Search(ctx context.Context, query string, maxResults int) (*googlebooks.VolumeList, error)
	Volume(ctx context.Context, id string) (*googlebooks.Volume, error)
}

// Repository defines the contract for the canonical books table.
type Repository interface {
	GetByID(ctx context.Context, id string) (Book, error)
	Upsert(ctx context.Context, b *Book) error
}
