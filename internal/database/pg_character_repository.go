package database

import (
	"context"
	"errors"
	"fmt"

	"tale-server/internal/interfaces"
	"tale-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.CharacterRepository = (*pgCharacterRepository)(nil)

const (
	createCharacterQuery = `
		INSERT INTO characters
			(user_id, name, label, prompt_description, display_description, image_url, is_user_character)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	listCharactersQuery = `
		SELECT id, user_id, name, label, prompt_description, display_description, image_url, is_user_character, created_at, updated_at
		FROM characters WHERE user_id = $1
		ORDER BY updated_at DESC`
	getCharacterQuery = `
		SELECT id, user_id, name, label, prompt_description, display_description, image_url, is_user_character, created_at, updated_at
		FROM characters WHERE id = $1 AND user_id = $2`
	deleteCharacterQuery = `DELETE FROM characters WHERE id = $1 AND user_id = $2`
)

type pgCharacterRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgCharacterRepository creates a PostgreSQL-backed CharacterRepository.
func NewPgCharacterRepository(provider *Provider, logger *zap.Logger) interfaces.CharacterRepository {
	return &pgCharacterRepository{
		provider: provider,
		logger:   logger.Named("PgCharacterRepo"),
	}
}

func (r *pgCharacterRepository) Create(ctx context.Context, character *models.Character) (int64, error) {
	if err := models.ValidateLabel(character.Label); err != nil {
		return 0, err
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create character", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createCharacterQuery,
		character.UserID, character.Name, character.Label, character.PromptDescription,
		character.DisplayDescription, character.ImageURL, character.IsUserCharacter,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create character", zap.Int64("userID", character.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create character: %w", err)
	}

	r.logger.Info("Character created", zap.Int64("characterID", id), zap.Int64("userID", character.UserID))
	return id, nil
}

func (r *pgCharacterRepository) ListByUser(ctx context.Context, userID int64) ([]models.Character, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty character list", zap.Error(err))
		return []models.Character{}, nil
	}

	characters := make([]models.Character, 0)
	if err := pgxscan.Select(ctx, db, &characters, listCharactersQuery, userID); err != nil {
		r.logger.Error("Failed to list characters", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

func (r *pgCharacterRepository) Get(ctx context.Context, id, userID int64) (*models.Character, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, character lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	character := &models.Character{}
	if err := pgxscan.Get(ctx, db, character, getCharacterQuery, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get character", zap.Int64("characterID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get character %d: %w", id, err)
	}
	return character, nil
}

func (r *pgCharacterRepository) Update(ctx context.Context, id, userID int64, upd models.CharacterUpdate) error {
	if upd.Label.IsSet() {
		if upd.Label.IsNull() {
			return models.ErrInvalidLabel
		}
		if err := models.ValidateLabel(upd.Label.Get()); err != nil {
			return err
		}
	}

	b := newUpdateBuilder()
	setField(b, "name", upd.Name)
	setField(b, "label", upd.Label)
	setField(b, "prompt_description", upd.PromptDescription)
	setField(b, "display_description", upd.DisplayDescription)
	setField(b, "image_url", upd.ImageURL)
	setField(b, "is_user_character", upd.IsUserCharacter)
	if b.empty() {
		return nil
	}
	b.setRaw("updated_at = now()")

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping character update", zap.Int64("characterID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE characters SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update character", zap.Int64("characterID", id), zap.Error(err))
		return fmt.Errorf("failed to update character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized character", zap.Int64("characterID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgCharacterRepository) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping character delete", zap.Int64("characterID", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteCharacterQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete character", zap.Int64("characterID", id), zap.Error(err))
		return fmt.Errorf("failed to delete character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized character", zap.Int64("characterID", id), zap.Int64("userID", userID))
	}
	return nil
}
