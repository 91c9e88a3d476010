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
var _ interfaces.APIKeyRepository = (*pgAPIKeyRepository)(nil)

const (
	createAPIKeyQuery = `
		INSERT INTO api_keys (user_id, key_name, encrypted_key, last_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	listAPIKeysQuery = `
		SELECT id, user_id, key_name, encrypted_key, last_used, created_at, updated_at
		FROM api_keys WHERE user_id = $1
		ORDER BY updated_at DESC`
	getAPIKeyQuery = `
		SELECT id, user_id, key_name, encrypted_key, last_used, created_at, updated_at
		FROM api_keys WHERE id = $1 AND user_id = $2`
	deleteAPIKeyQuery = `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
)

type pgAPIKeyRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgAPIKeyRepository creates a PostgreSQL-backed APIKeyRepository.
// Only ciphertext ever reaches this layer; encryption is external.
func NewPgAPIKeyRepository(provider *Provider, logger *zap.Logger) interfaces.APIKeyRepository {
	return &pgAPIKeyRepository{
		provider: provider,
		logger:   logger.Named("PgAPIKeyRepo"),
	}
}

func (r *pgAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create api key", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createAPIKeyQuery, key.UserID, key.KeyName, key.EncryptedKey, key.LastUsed).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create api key", zap.Int64("userID", key.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create api key: %w", err)
	}

	r.logger.Info("API key created", zap.Int64("keyID", id), zap.Int64("userID", key.UserID))
	return id, nil
}

func (r *pgAPIKeyRepository) ListByUser(ctx context.Context, userID int64) ([]models.APIKey, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty api key list", zap.Error(err))
		return []models.APIKey{}, nil
	}

	keys := make([]models.APIKey, 0)
	if err := pgxscan.Select(ctx, db, &keys, listAPIKeysQuery, userID); err != nil {
		r.logger.Error("Failed to list api keys", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

func (r *pgAPIKeyRepository) Get(ctx context.Context, id, userID int64) (*models.APIKey, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, api key lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	key := &models.APIKey{}
	if err := pgxscan.Get(ctx, db, key, getAPIKeyQuery, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get api key", zap.Int64("keyID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get api key %d: %w", id, err)
	}
	return key, nil
}

func (r *pgAPIKeyRepository) Update(ctx context.Context, id, userID int64, upd models.APIKeyUpdate) error {
	b := newUpdateBuilder()
	setField(b, "key_name", upd.KeyName)
	setField(b, "encrypted_key", upd.EncryptedKey)
	setField(b, "last_used", upd.LastUsed)
	if b.empty() {
		return nil
	}
	b.setRaw("updated_at = now()")

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping api key update", zap.Int64("keyID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE api_keys SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update api key", zap.Int64("keyID", id), zap.Error(err))
		return fmt.Errorf("failed to update api key %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized api key", zap.Int64("keyID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgAPIKeyRepository) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping api key delete", zap.Int64("keyID", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteAPIKeyQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete api key", zap.Int64("keyID", id), zap.Error(err))
		return fmt.Errorf("failed to delete api key %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized api key", zap.Int64("keyID", id), zap.Int64("userID", userID))
	}
	return nil
}
