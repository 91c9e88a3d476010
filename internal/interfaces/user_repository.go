package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// UserRepository merges external identities into the user table and resolves
// accounts for the owner-identity collaborator.
type UserRepository interface {
	// Upsert inserts or updates the user keyed on the unique openId and
	// returns the resulting row. Fails with models.ErrMissingOpenID when the
	// identity carries no openId and models.ErrStoreUnavailable when the
	// store cannot be reached.
	Upsert(ctx context.Context, identity models.UserIdentity) (*models.User, error)

	// GetByOpenID returns the user with the given external identity, or
	// models.ErrNotFound.
	GetByOpenID(ctx context.Context, openID string) (*models.User, error)

	// GetByID returns the user with the given id, or models.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
