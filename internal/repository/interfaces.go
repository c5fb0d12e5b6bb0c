package repository

import (
	"context"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

// MediaStore persists resolution records. It is an audit/history trail,
// not the poster cache: posters stay in memory only.
type MediaStore interface {
	// Record upserts a resolution. An existing key bumps its resolve
	// count and refreshes the mutable fields.
	Record(ctx context.Context, rec *domain.MediaRecord) error

	// Get retrieves a record by media key.
	Get(ctx context.Context, key domain.MediaKey) (*domain.MediaRecord, error)

	// List returns the most recently resolved records, newest first.
	List(ctx context.Context, limit int) ([]*domain.MediaRecord, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
