// Package profiles provides the user-profile repository.
package profiles

import (
	"context"

	"github.com/mkaranov/brospace/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)

	// EnsureExists inserts a default profile row for the given profile's ID
	// unless one already exists, and returns the row that won. Safe to call
	// concurrently for the same ID.
	EnsureExists(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	Update(ctx context.Context, id string, patch *models.ProfilePatch) error
}
