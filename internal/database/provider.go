package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tale-server/internal/interfaces"
	"tale-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Provider lazily opens a single shared pgx pool for the process lifetime.
// A failed attempt is not cached, so a later call may retry; an empty
// connection string means the store is permanently unavailable.
type Provider struct {
	connString string
	logger     *zap.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewProvider creates a Provider for the given connection string. The string
// may be empty; every Acquire then reports models.ErrStoreUnavailable.
func NewProvider(connString string, logger *zap.Logger) *Provider {
	return &Provider{
		connString: connString,
		logger:     logger.Named("DBProvider"),
	}
}

// Acquire returns the shared handle, connecting on first use.
func (p *Provider) Acquire(ctx context.Context) (interfaces.DBTX, error) {
	pool, err := p.acquirePool(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (p *Provider) acquirePool(ctx context.Context) (*pgxpool.Pool, error) {
	if p.connString == "" {
		return nil, models.ErrStoreUnavailable
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, p.connString)
	if err != nil {
		p.logger.Error("Failed to parse database connection string", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		p.logger.Error("Failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	p.logger.Info("Database connection established")
	p.pool = pool
	return p.pool, nil
}

// InTransaction runs fn inside a transaction, rolling back when fn returns
// an error. Used by cascading deletes and scenario copy.
func (p *Provider) InTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	pool, err := p.acquirePool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			p.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close releases the shared pool if one was ever created.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
		p.logger.Info("Database connection closed")
	}
}
