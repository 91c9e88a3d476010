package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// ScenarioRepository manages scenarios and their ordered child rows.
// Scenario reads by id are owner-agnostic because scenarios may be public;
// every write is owner-scoped.
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *models.Scenario) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Scenario, error)

	// GetByID has no ownership filter: public scenario detail is fetchable
	// by id alone.
	GetByID(ctx context.Context, id int64) (*models.Scenario, error)

	Update(ctx context.Context, id, userID int64, upd models.ScenarioUpdate) error

	// Delete removes the scenario and all of its characters and interactions,
	// children first.
	Delete(ctx context.Context, id, userID int64) error

	// Copy clones the scenario (which must exist) and its children under a
	// new id owned by newOwnerID. The clone's title is suffixed " (Copy)"
	// and it is always private. Returns the new scenario id.
	Copy(ctx context.Context, id, newOwnerID int64) (int64, error)

	AddCharacter(ctx context.Context, userID int64, character *models.ScenarioCharacter) (int64, error)
	ListCharacters(ctx context.Context, scenarioID int64) ([]models.ScenarioCharacter, error)
	UpdateCharacter(ctx context.Context, id, userID int64, upd models.ScenarioCharacterUpdate) error
	DeleteCharacter(ctx context.Context, id, userID int64) error

	AddInteraction(ctx context.Context, userID int64, interaction *models.ScenarioInteraction) (int64, error)
	ListInteractions(ctx context.Context, scenarioID int64) ([]models.ScenarioInteraction, error)
	UpdateInteraction(ctx context.Context, id, userID int64, upd models.ScenarioInteractionUpdate) error
	DeleteInteraction(ctx context.Context, id, userID int64) error
}
