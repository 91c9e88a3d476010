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
var _ interfaces.GeneratedImageRepository = (*pgGeneratedImageRepository)(nil)

const (
	createGeneratedImageQuery = `
		INSERT INTO generated_images
			(user_id, include_prompt, exclude_prompt, cfg_scale, fidelity, aspect_ratio, style, seed, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	listGeneratedImagesQuery = `
		SELECT id, user_id, include_prompt, exclude_prompt, cfg_scale, fidelity, aspect_ratio, style, seed, image_url, created_at
		FROM generated_images WHERE user_id = $1
		ORDER BY created_at DESC`
	getGeneratedImageQuery = `
		SELECT id, user_id, include_prompt, exclude_prompt, cfg_scale, fidelity, aspect_ratio, style, seed, image_url, created_at
		FROM generated_images WHERE id = $1 AND user_id = $2`
	deleteGeneratedImageQuery = `DELETE FROM generated_images WHERE id = $1 AND user_id = $2`
)

type pgGeneratedImageRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgGeneratedImageRepository creates a PostgreSQL-backed GeneratedImageRepository.
func NewPgGeneratedImageRepository(provider *Provider, logger *zap.Logger) interfaces.GeneratedImageRepository {
	return &pgGeneratedImageRepository{
		provider: provider,
		logger:   logger.Named("PgGeneratedImageRepo"),
	}
}

func (r *pgGeneratedImageRepository) Create(ctx context.Context, image *models.GeneratedImage) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create generated image", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createGeneratedImageQuery,
		image.UserID, image.IncludePrompt, image.ExcludePrompt, image.CfgScale,
		image.Fidelity, image.AspectRatio, image.Style, image.Seed, image.ImageURL,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create generated image", zap.Int64("userID", image.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create generated image: %w", err)
	}

	r.logger.Info("Generated image recorded", zap.Int64("imageID", id), zap.Int64("userID", image.UserID))
	return id, nil
}

func (r *pgGeneratedImageRepository) ListByUser(ctx context.Context, userID int64) ([]models.GeneratedImage, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty generated image list", zap.Error(err))
		return []models.GeneratedImage{}, nil
	}

	images := make([]models.GeneratedImage, 0)
	if err := pgxscan.Select(ctx, db, &images, listGeneratedImagesQuery, userID); err != nil {
		r.logger.Error("Failed to list generated images", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list generated images: %w", err)
	}
	return images, nil
}

func (r *pgGeneratedImageRepository) Get(ctx context.Context, id, userID int64) (*models.GeneratedImage, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, generated image lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	image := &models.GeneratedImage{}
	if err := pgxscan.Get(ctx, db, image, getGeneratedImageQuery, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get generated image", zap.Int64("imageID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get generated image %d: %w", id, err)
	}
	return image, nil
}

func (r *pgGeneratedImageRepository) Update(ctx context.Context, id, userID int64, upd models.GeneratedImageUpdate) error {
	b := newUpdateBuilder()
	setField(b, "seed", upd.Seed)
	setField(b, "image_url", upd.ImageURL)
	if b.empty() {
		return nil
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping generated image update", zap.Int64("imageID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE generated_images SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update generated image", zap.Int64("imageID", id), zap.Error(err))
		return fmt.Errorf("failed to update generated image %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized generated image", zap.Int64("imageID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgGeneratedImageRepository) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping generated image delete", zap.Int64("imageID", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteGeneratedImageQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete generated image", zap.Int64("imageID", id), zap.Error(err))
		return fmt.Errorf("failed to delete generated image %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized generated image", zap.Int64("imageID", id), zap.Int64("userID", userID))
	}
	return nil
}
