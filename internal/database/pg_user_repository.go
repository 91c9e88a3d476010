package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tale-server/internal/interfaces"
	"tale-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const (
	getUserByOpenIDQuery = `
		SELECT id, open_id, name, email, login_method, role, last_signed_in, created_at, updated_at
		FROM users WHERE open_id = $1`
	getUserByIDQuery = `
		SELECT id, open_id, name, email, login_method, role, last_signed_in, created_at, updated_at
		FROM users WHERE id = $1`
)

type pgUserRepository struct {
	provider    *Provider
	ownerOpenID string
	logger      *zap.Logger
}

// NewPgUserRepository creates a PostgreSQL-backed UserRepository. The owner
// openId, when non-empty, grants the admin role on upsert without an
// explicit role.
func NewPgUserRepository(provider *Provider, ownerOpenID string, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		provider:    provider,
		ownerOpenID: ownerOpenID,
		logger:      logger.Named("PgUserRepo"),
	}
}

// Upsert merges the external identity into the user table with a single
// INSERT ... ON CONFLICT statement keyed on open_id.
func (r *pgUserRepository) Upsert(ctx context.Context, identity models.UserIdentity) (*models.User, error) {
	plan, err := buildUserUpsert(identity, r.ownerOpenID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable for user upsert", zap.String("openID", identity.OpenID), zap.Error(err))
		return nil, err
	}

	user := &models.User{}
	if err := pgxscan.Get(ctx, db, user, plan.insertSQL(), plan.args...); err != nil {
		r.logger.Error("Failed to upsert user", zap.String("openID", identity.OpenID), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.logger.Info("User upserted", zap.Int64("userID", user.ID), zap.String("openID", user.OpenID))
	return user, nil
}

// GetByOpenID retrieves a user by external identity.
func (r *pgUserRepository) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, user lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	user := &models.User{}
	if err := pgxscan.Get(ctx, db, user, getUserByOpenIDQuery, openID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by openID", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by openID: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by numeric id.
func (r *pgUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, user lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	user := &models.User{}
	if err := pgxscan.Get(ctx, db, user, getUserByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by id", zap.Int64("userID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}
