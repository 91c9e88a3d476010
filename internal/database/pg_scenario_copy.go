package database

import (
	"context"
	"errors"
	"fmt"

	"tale-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	copyScenarioInsertQuery = `
		INSERT INTO scenarios
			(user_id, title, prompt_description, display_description, image_url, is_public)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id`
	copyScenarioCharacterQuery = `
		INSERT INTO scenario_characters
			(scenario_id, character_id, name, label, prompt_description, is_user_character, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	copyScenarioInteractionQuery = `
		INSERT INTO scenario_interactions
			(scenario_id, interaction_type, character_label, content, is_sticky, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

// Copy clones a scenario and its ordered children under a new id owned by
// newOwnerID. The source is read without an ownership filter because public
// scenarios are copyable by anyone holding their id. The whole clone runs in
// one transaction, so an interrupted copy leaves no partial scenario behind.
func (r *pgScenarioRepository) Copy(ctx context.Context, id, newOwnerID int64) (int64, error) {
	var newID int64
	err := r.provider.InTransaction(ctx, func(tx pgx.Tx) error {
		source := &models.Scenario{}
		if err := pgxscan.Get(ctx, tx, source, getScenarioQuery, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotFound
			}
			return fmt.Errorf("failed to read copy source scenario %d: %w", id, err)
		}

		err := tx.QueryRow(ctx, copyScenarioInsertQuery,
			newOwnerID, source.Title+" (Copy)", source.PromptDescription,
			source.DisplayDescription, source.ImageURL,
		).Scan(&newID)
		if err != nil {
			return fmt.Errorf("failed to insert scenario copy: %w", err)
		}

		var characters []models.ScenarioCharacter
		if err := pgxscan.Select(ctx, tx, &characters, listScenarioCharactersQuery, id); err != nil {
			return fmt.Errorf("failed to read source scenario characters: %w", err)
		}
		for _, c := range characters {
			_, err := tx.Exec(ctx, copyScenarioCharacterQuery,
				newID, c.CharacterID, c.Name, c.Label, c.PromptDescription, c.IsUserCharacter, c.OrderIndex)
			if err != nil {
				return fmt.Errorf("failed to copy scenario character %d: %w", c.ID, err)
			}
		}

		var interactions []models.ScenarioInteraction
		if err := pgxscan.Select(ctx, tx, &interactions, listScenarioInteractionsQuery, id); err != nil {
			return fmt.Errorf("failed to read source scenario interactions: %w", err)
		}
		for _, in := range interactions {
			_, err := tx.Exec(ctx, copyScenarioInteractionQuery,
				newID, in.InteractionType, in.CharacterLabel, in.Content, in.IsSticky, in.OrderIndex)
			if err != nil {
				return fmt.Errorf("failed to copy scenario interaction %d: %w", in.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrStoreUnavailable) {
			return 0, err
		}
		r.logger.Error("Failed to copy scenario", zap.Int64("scenarioID", id), zap.Error(err))
		return 0, err
	}

	r.logger.Info("Scenario copied", zap.Int64("sourceID", id), zap.Int64("newID", newID), zap.Int64("ownerID", newOwnerID))
	return newID, nil
}
