package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// CharacterRepository manages the user's character library, owner-scoped.
type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Character, error)
	Get(ctx context.Context, id, userID int64) (*models.Character, error)
	Update(ctx context.Context, id, userID int64, upd models.CharacterUpdate) error
	Delete(ctx context.Context, id, userID int64) error
}
