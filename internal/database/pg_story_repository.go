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
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

// storyChildTables is the cascade order for story deletion.
var storyChildTables = []string{"story_characters"}

const (
	createStoryQuery = `
		INSERT INTO stories
			(user_id, title, plot_description, style_description, content, model_id, sampling_params)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	listStoriesQuery = `
		SELECT id, user_id, title, plot_description, style_description, content, model_id, sampling_params, created_at, updated_at
		FROM stories WHERE user_id = $1
		ORDER BY updated_at DESC`
	getStoryQuery = `
		SELECT id, user_id, title, plot_description, style_description, content, model_id, sampling_params, created_at, updated_at
		FROM stories WHERE id = $1 AND user_id = $2`
	deleteStoryQuery = `DELETE FROM stories WHERE id = $1 AND user_id = $2`

	addStoryCharacterQuery = `
		INSERT INTO story_characters (story_id, name, description, order_index)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM stories WHERE id = $1 AND user_id = $5)
		RETURNING id`
	listStoryCharactersQuery = `
		SELECT c.id, c.story_id, c.name, c.description, c.order_index, c.created_at
		FROM story_characters c
		JOIN stories st ON st.id = c.story_id
		WHERE c.story_id = $1 AND st.user_id = $2
		ORDER BY c.order_index ASC, c.id ASC`
	deleteStoryCharacterQuery = `
		DELETE FROM story_characters c
		USING stories st
		WHERE c.id = $1 AND c.story_id = st.id AND st.user_id = $2`
)

type pgStoryRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgStoryRepository creates a PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(provider *Provider, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		provider: provider,
		logger:   logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create story", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createStoryQuery,
		story.UserID, story.Title, story.PlotDescription, story.StyleDescription,
		story.Content, story.ModelID, story.SamplingParams,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create story", zap.Int64("userID", story.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create story: %w", err)
	}

	r.logger.Info("Story created", zap.Int64("storyID", id), zap.Int64("userID", story.UserID))
	return id, nil
}

func (r *pgStoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Story, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty story list", zap.Error(err))
		return []models.Story{}, nil
	}

	stories := make([]models.Story, 0)
	if err := pgxscan.Select(ctx, db, &stories, listStoriesQuery, userID); err != nil {
		r.logger.Error("Failed to list stories", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func (r *pgStoryRepository) Get(ctx context.Context, id, userID int64) (*models.Story, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, story lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	story := &models.Story{}
	if err := pgxscan.Get(ctx, db, story, getStoryQuery, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.Int64("storyID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %d: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) Update(ctx context.Context, id, userID int64, upd models.StoryUpdate) error {
	b := newUpdateBuilder()
	setField(b, "title", upd.Title)
	setField(b, "plot_description", upd.PlotDescription)
	setField(b, "style_description", upd.StyleDescription)
	setField(b, "content", upd.Content)
	setField(b, "model_id", upd.ModelID)
	setField(b, "sampling_params", upd.SamplingParams)
	if b.empty() {
		return nil
	}
	b.setRaw("updated_at = now()")

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping story update", zap.Int64("storyID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE stories SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update story", zap.Int64("storyID", id), zap.Error(err))
		return fmt.Errorf("failed to update story %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized story", zap.Int64("storyID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the story's characters and then the story itself, inside
// one transaction.
func (r *pgStoryRepository) Delete(ctx context.Context, id, userID int64) error {
	err := r.provider.InTransaction(ctx, func(tx pgx.Tx) error {
		for _, table := range storyChildTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE story_id = $1", table), id); err != nil {
				return fmt.Errorf("failed to delete %s for story %d: %w", table, id, err)
			}
		}
		cmdTag, err := tx.Exec(ctx, deleteStoryQuery, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete story %d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			r.logger.Warn("Store unavailable, skipping story delete", zap.Int64("storyID", id), zap.Error(err))
			return nil
		}
		if errors.Is(err, models.ErrNotFound) {
			r.logger.Warn("Attempted to delete non-existent or unauthorized story", zap.Int64("storyID", id), zap.Int64("userID", userID))
			return nil
		}
		r.logger.Error("Failed to cascade-delete story", zap.Int64("storyID", id), zap.Error(err))
		return err
	}

	r.logger.Info("Story deleted", zap.Int64("storyID", id), zap.Int64("userID", userID))
	return nil
}

func (r *pgStoryRepository) AddCharacter(ctx context.Context, userID int64, character *models.StoryCharacter) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot add story character", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, addStoryCharacterQuery,
		character.StoryID, character.Name, character.Description, character.OrderIndex, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Attempted to add character to non-existent or unauthorized story",
				zap.Int64("storyID", character.StoryID), zap.Int64("userID", userID))
			return 0, models.ErrNotFound
		}
		r.logger.Error("Failed to add story character", zap.Int64("storyID", character.StoryID), zap.Error(err))
		return 0, fmt.Errorf("failed to add story character: %w", err)
	}
	return id, nil
}

func (r *pgStoryRepository) ListCharacters(ctx context.Context, storyID, userID int64) ([]models.StoryCharacter, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty story character list", zap.Error(err))
		return []models.StoryCharacter{}, nil
	}

	characters := make([]models.StoryCharacter, 0)
	if err := pgxscan.Select(ctx, db, &characters, listStoryCharactersQuery, storyID, userID); err != nil {
		r.logger.Error("Failed to list story characters", zap.Int64("storyID", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list story characters: %w", err)
	}
	return characters, nil
}

func (r *pgStoryRepository) UpdateCharacter(ctx context.Context, id, userID int64, upd models.StoryCharacterUpdate) error {
	b := newUpdateBuilder()
	setField(b, "name", upd.Name)
	setField(b, "description", upd.Description)
	setField(b, "order_index", upd.OrderIndex)
	if b.empty() {
		return nil
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping story character update", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE story_characters c SET %s
		FROM stories st
		WHERE c.id = $%d AND c.story_id = st.id AND st.user_id = $%d`,
		b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update story character", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update story character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized story character", zap.Int64("id", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) DeleteCharacter(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping story character delete", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteStoryCharacterQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete story character", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete story character %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized story character", zap.Int64("id", id), zap.Int64("userID", userID))
	}
	return nil
}
