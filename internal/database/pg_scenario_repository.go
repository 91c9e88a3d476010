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
var _ interfaces.ScenarioRepository = (*pgScenarioRepository)(nil)

// scenarioChildTables is the cascade order for scenario deletion: dependent
// rows first, parent row last.
var scenarioChildTables = []string{"scenario_interactions", "scenario_characters"}

const (
	createScenarioQuery = `
		INSERT INTO scenarios
			(user_id, title, prompt_description, display_description, image_url, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	listScenariosQuery = `
		SELECT id, user_id, title, prompt_description, display_description, image_url, is_public, created_at, updated_at
		FROM scenarios WHERE user_id = $1
		ORDER BY updated_at DESC`
	getScenarioQuery = `
		SELECT id, user_id, title, prompt_description, display_description, image_url, is_public, created_at, updated_at
		FROM scenarios WHERE id = $1`
	deleteScenarioQuery = `DELETE FROM scenarios WHERE id = $1 AND user_id = $2`
)

type pgScenarioRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgScenarioRepository creates a PostgreSQL-backed ScenarioRepository.
func NewPgScenarioRepository(provider *Provider, logger *zap.Logger) interfaces.ScenarioRepository {
	return &pgScenarioRepository{
		provider: provider,
		logger:   logger.Named("PgScenarioRepo"),
	}
}

func (r *pgScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create scenario", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createScenarioQuery,
		scenario.UserID, scenario.Title, scenario.PromptDescription,
		scenario.DisplayDescription, scenario.ImageURL, scenario.IsPublic,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create scenario", zap.Int64("userID", scenario.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create scenario: %w", err)
	}

	r.logger.Info("Scenario created", zap.Int64("scenarioID", id), zap.Int64("userID", scenario.UserID))
	return id, nil
}

func (r *pgScenarioRepository) ListByUser(ctx context.Context, userID int64) ([]models.Scenario, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty scenario list", zap.Error(err))
		return []models.Scenario{}, nil
	}

	scenarios := make([]models.Scenario, 0)
	if err := pgxscan.Select(ctx, db, &scenarios, listScenariosQuery, userID); err != nil {
		r.logger.Error("Failed to list scenarios", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

// GetByID intentionally skips the ownership filter: scenarios may be public,
// so detail is fetchable by id alone.
func (r *pgScenarioRepository) GetByID(ctx context.Context, id int64) (*models.Scenario, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, scenario lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	scenario := &models.Scenario{}
	if err := pgxscan.Get(ctx, db, scenario, getScenarioQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get scenario", zap.Int64("scenarioID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get scenario %d: %w", id, err)
	}
	return scenario, nil
}

func (r *pgScenarioRepository) Update(ctx context.Context, id, userID int64, upd models.ScenarioUpdate) error {
	b := newUpdateBuilder()
	setField(b, "title", upd.Title)
	setField(b, "prompt_description", upd.PromptDescription)
	setField(b, "display_description", upd.DisplayDescription)
	setField(b, "image_url", upd.ImageURL)
	setField(b, "is_public", upd.IsPublic)
	if b.empty() {
		return nil
	}
	b.setRaw("updated_at = now()")

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping scenario update", zap.Int64("scenarioID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE scenarios SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update scenario", zap.Int64("scenarioID", id), zap.Error(err))
		return fmt.Errorf("failed to update scenario %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized scenario", zap.Int64("scenarioID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the scenario's interactions and characters, then the
// scenario itself, inside one transaction. An unauthorized or missing parent
// rolls the whole cascade back.
func (r *pgScenarioRepository) Delete(ctx context.Context, id, userID int64) error {
	err := r.provider.InTransaction(ctx, func(tx pgx.Tx) error {
		for _, table := range scenarioChildTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE scenario_id = $1", table), id); err != nil {
				return fmt.Errorf("failed to delete %s for scenario %d: %w", table, id, err)
			}
		}
		cmdTag, err := tx.Exec(ctx, deleteScenarioQuery, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete scenario %d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			r.logger.Warn("Store unavailable, skipping scenario delete", zap.Int64("scenarioID", id), zap.Error(err))
			return nil
		}
		if errors.Is(err, models.ErrNotFound) {
			r.logger.Warn("Attempted to delete non-existent or unauthorized scenario", zap.Int64("scenarioID", id), zap.Int64("userID", userID))
			return nil
		}
		r.logger.Error("Failed to cascade-delete scenario", zap.Int64("scenarioID", id), zap.Error(err))
		return err
	}

	r.logger.Info("Scenario deleted", zap.Int64("scenarioID", id), zap.Int64("userID", userID))
	return nil
}
