package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// StoryRepository manages stories and their ordered cast, owner-scoped.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Story, error)
	Get(ctx context.Context, id, userID int64) (*models.Story, error)
	Update(ctx context.Context, id, userID int64, upd models.StoryUpdate) error

	// Delete removes the story and all of its characters, children first.
	Delete(ctx context.Context, id, userID int64) error

	AddCharacter(ctx context.Context, userID int64, character *models.StoryCharacter) (int64, error)
	ListCharacters(ctx context.Context, storyID, userID int64) ([]models.StoryCharacter, error)
	UpdateCharacter(ctx context.Context, id, userID int64, upd models.StoryCharacterUpdate) error
	DeleteCharacter(ctx context.Context, id, userID int64) error
}
