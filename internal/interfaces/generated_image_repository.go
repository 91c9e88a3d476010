package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// GeneratedImageRepository records image generation requests and results,
// owner-scoped.
type GeneratedImageRepository interface {
	Create(ctx context.Context, image *models.GeneratedImage) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.GeneratedImage, error)
	Get(ctx context.Context, id, userID int64) (*models.GeneratedImage, error)
	Update(ctx context.Context, id, userID int64, upd models.GeneratedImageUpdate) error
	Delete(ctx context.Context, id, userID int64) error
}
