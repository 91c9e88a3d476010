package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// APIKeyRepository stores ciphertext provider keys, owner-scoped.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.APIKey, error)
	Get(ctx context.Context, id, userID int64) (*models.APIKey, error)
	Update(ctx context.Context, id, userID int64, upd models.APIKeyUpdate) error
	Delete(ctx context.Context, id, userID int64) error
}
