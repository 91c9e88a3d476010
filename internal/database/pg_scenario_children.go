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

// Child writes prove scenario ownership inside the statement, so a caller
// can never attach to or mutate another user's scenario. Child reads are
// keyed by scenario id alone, matching the public scenario detail rule.

const (
	addScenarioCharacterQuery = `
		INSERT INTO scenario_characters
			(scenario_id, character_id, name, label, prompt_description, is_user_character, order_index)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM scenarios WHERE id = $1 AND user_id = $8)
		RETURNING id`
	listScenarioCharactersQuery = `
		SELECT id, scenario_id, character_id, name, label, prompt_description, is_user_character, order_index, created_at
		FROM scenario_characters WHERE scenario_id = $1
		ORDER BY order_index ASC, id ASC`
	deleteScenarioCharacterQuery = `
		DELETE FROM scenario_characters sc
		USING scenarios s
		WHERE sc.id = $1 AND sc.scenario_id = s.id AND s.user_id = $2`

	addScenarioInteractionQuery = `
		INSERT INTO scenario_interactions
			(scenario_id, interaction_type, character_label, content, is_sticky, order_index)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE EXISTS (SELECT 1 FROM scenarios WHERE id = $1 AND user_id = $7)
		RETURNING id`
	listScenarioInteractionsQuery = `
		SELECT id, scenario_id, interaction_type, character_label, content, is_sticky, order_index, created_at
		FROM scenario_interactions WHERE scenario_id = $1
		ORDER BY order_index ASC, id ASC`
	deleteScenarioInteractionQuery = `
		DELETE FROM scenario_interactions si
		USING scenarios s
		WHERE si.id = $1 AND si.scenario_id = s.id AND s.user_id = $2`
)

func (r *pgScenarioRepository) AddCharacter(ctx context.Context, userID int64, character *models.ScenarioCharacter) (int64, error) {
	if err := models.ValidateLabel(character.Label); err != nil {
		return 0, err
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot add scenario character", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, addScenarioCharacterQuery,
		character.ScenarioID, character.CharacterID, character.Name, character.Label,
		character.PromptDescription, character.IsUserCharacter, character.OrderIndex, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Attempted to add character to non-existent or unauthorized scenario",
				zap.Int64("scenarioID", character.ScenarioID), zap.Int64("userID", userID))
			return 0, models.ErrNotFound
		}
		r.logger.Error("Failed to add scenario character", zap.Int64("scenarioID", character.ScenarioID), zap.Error(err))
		return 0, fmt.Errorf("failed to add scenario character: %w", err)
	}
	return id, nil
}

func (r *pgScenarioRepository) ListCharacters(ctx context.Context, scenarioID int64) ([]models.ScenarioCharacter, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty scenario character list", zap.Error(err))
		return []models.ScenarioCharacter{}, nil
	}

	characters := make([]models.ScenarioCharacter, 0)
	if err := pgxscan.Select(ctx, db, &characters, listScenarioCharactersQuery, scenarioID); err != nil {
		r.logger.Error("Failed to list scenario characters", zap.Int64("scenarioID", scenarioID), zap.Error(err))
		return nil, fmt.Errorf("failed to list scenario characters: %w", err)
	}
	return characters, nil
}

func (r *pgScenarioRepository) UpdateCharacter(ctx context.Context, id, userID int64, upd models.ScenarioCharacterUpdate) error {
	if upd.Label.IsSet() {
		if upd.Label.IsNull() {
			return models.ErrInvalidLabel
		}
		if err := models.ValidateLabel(upd.Label.Get()); err != nil {
			return err
		}
	}

	b := newUpdateBuilder()
	setField(b, "character_id", upd.CharacterID)
	setField(b, "name", upd.Name)
	setField(b, "label", upd.Label)
	setField(b, "prompt_description", upd.PromptDescription)
	setField(b, "is_user_character", upd.IsUserCharacter)
	setField(b, "order_index", upd.OrderIndex)
	if b.empty() {
		return nil
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping scenario character update", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE scenario_characters sc SET %s
		FROM scenarios s
		WHERE sc.id = $%d AND sc.scenario_id = s.id AND s.user_id = $%d`,
		b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update scenario character", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update scenario character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized scenario character", zap.Int64("id", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgScenarioRepository) DeleteCharacter(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping scenario character delete", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteScenarioCharacterQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete scenario character", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete scenario character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized scenario character", zap.Int64("id", id), zap.Int64("userID", userID))
	}
	return nil
}

func (r *pgScenarioRepository) AddInteraction(ctx context.Context, userID int64, interaction *models.ScenarioInteraction) (int64, error) {
	if !interaction.InteractionType.Valid() {
		return 0, models.ErrInvalidInput
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot add scenario interaction", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, addScenarioInteractionQuery,
		interaction.ScenarioID, interaction.InteractionType, interaction.CharacterLabel,
		interaction.Content, interaction.IsSticky, interaction.OrderIndex, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Attempted to add interaction to non-existent or unauthorized scenario",
				zap.Int64("scenarioID", interaction.ScenarioID), zap.Int64("userID", userID))
			return 0, models.ErrNotFound
		}
		r.logger.Error("Failed to add scenario interaction", zap.Int64("scenarioID", interaction.ScenarioID), zap.Error(err))
		return 0, fmt.Errorf("failed to add scenario interaction: %w", err)
	}
	return id, nil
}

func (r *pgScenarioRepository) ListInteractions(ctx context.Context, scenarioID int64) ([]models.ScenarioInteraction, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty scenario interaction list", zap.Error(err))
		return []models.ScenarioInteraction{}, nil
	}

	interactions := make([]models.ScenarioInteraction, 0)
	if err := pgxscan.Select(ctx, db, &interactions, listScenarioInteractionsQuery, scenarioID); err != nil {
		r.logger.Error("Failed to list scenario interactions", zap.Int64("scenarioID", scenarioID), zap.Error(err))
		return nil, fmt.Errorf("failed to list scenario interactions: %w", err)
	}
	return interactions, nil
}

func (r *pgScenarioRepository) UpdateInteraction(ctx context.Context, id, userID int64, upd models.ScenarioInteractionUpdate) error {
	if upd.InteractionType.IsSet() {
		if upd.InteractionType.IsNull() || !upd.InteractionType.Get().Valid() {
			return models.ErrInvalidInput
		}
	}

	b := newUpdateBuilder()
	setField(b, "interaction_type", upd.InteractionType)
	setField(b, "character_label", upd.CharacterLabel)
	setField(b, "content", upd.Content)
	setField(b, "is_sticky", upd.IsSticky)
	setField(b, "order_index", upd.OrderIndex)
	if b.empty() {
		return nil
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping scenario interaction update", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE scenario_interactions si SET %s
		FROM scenarios s
		WHERE si.id = $%d AND si.scenario_id = s.id AND s.user_id = $%d`,
		b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update scenario interaction", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update scenario interaction %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized scenario interaction", zap.Int64("id", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgScenarioRepository) DeleteInteraction(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping scenario interaction delete", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteScenarioInteractionQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete scenario interaction", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete scenario interaction %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized scenario interaction", zap.Int64("id", id), zap.Int64("userID", userID))
	}
	return nil
}
