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
var _ interfaces.ChatRepository = (*pgChatRepository)(nil)

// chatSessionChildTables is the cascade order for session deletion.
var chatSessionChildTables = []string{"chat_messages"}

const (
	createChatSessionQuery = `
		INSERT INTO chat_sessions
			(user_id, scenario_id, title, system_prompt, model_id, sampling_params)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	listChatSessionsQuery = `
		SELECT id, user_id, scenario_id, title, system_prompt, model_id, sampling_params, created_at, updated_at
		FROM chat_sessions WHERE user_id = $1
		ORDER BY updated_at DESC`
	getChatSessionQuery = `
		SELECT id, user_id, scenario_id, title, system_prompt, model_id, sampling_params, created_at, updated_at
		FROM chat_sessions WHERE id = $1 AND user_id = $2`
	deleteChatSessionQuery = `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`

	addChatMessageQuery = `
		INSERT INTO chat_messages
			(session_id, message_type, character_label, character_name, content, is_sticky)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1 AND user_id = $7)
		RETURNING id`
	listChatMessagesQuery = `
		SELECT m.id, m.session_id, m.message_type, m.character_label, m.character_name, m.content, m.is_sticky, m.created_at
		FROM chat_messages m
		JOIN chat_sessions s ON s.id = m.session_id
		WHERE m.session_id = $1 AND s.user_id = $2
		ORDER BY m.created_at ASC, m.id ASC`
	deleteChatMessageQuery = `
		DELETE FROM chat_messages m
		USING chat_sessions s
		WHERE m.id = $1 AND m.session_id = s.id AND s.user_id = $2`
)

type pgChatRepository struct {
	provider *Provider
	logger   *zap.Logger
}

// NewPgChatRepository creates a PostgreSQL-backed ChatRepository.
func NewPgChatRepository(provider *Provider, logger *zap.Logger) interfaces.ChatRepository {
	return &pgChatRepository{
		provider: provider,
		logger:   logger.Named("PgChatRepo"),
	}
}

func (r *pgChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) (int64, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot create chat session", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, createChatSessionQuery,
		session.UserID, session.ScenarioID, session.Title, session.SystemPrompt,
		session.ModelID, session.SamplingParams,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create chat session", zap.Int64("userID", session.UserID), zap.Error(err))
		return 0, fmt.Errorf("failed to create chat session: %w", err)
	}

	r.logger.Info("Chat session created", zap.Int64("sessionID", id), zap.Int64("userID", session.UserID))
	return id, nil
}

func (r *pgChatRepository) ListSessionsByUser(ctx context.Context, userID int64) ([]models.ChatSession, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty chat session list", zap.Error(err))
		return []models.ChatSession{}, nil
	}

	sessions := make([]models.ChatSession, 0)
	if err := pgxscan.Select(ctx, db, &sessions, listChatSessionsQuery, userID); err != nil {
		r.logger.Error("Failed to list chat sessions", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

func (r *pgChatRepository) GetSession(ctx context.Context, id, userID int64) (*models.ChatSession, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, chat session lookup degrades to not found", zap.Error(err))
		return nil, models.ErrNotFound
	}

	session := &models.ChatSession{}
	if err := pgxscan.Get(ctx, db, session, getChatSessionQuery, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get chat session", zap.Int64("sessionID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get chat session %d: %w", id, err)
	}
	return session, nil
}

func (r *pgChatRepository) UpdateSession(ctx context.Context, id, userID int64, upd models.ChatSessionUpdate) error {
	b := newUpdateBuilder()
	setField(b, "scenario_id", upd.ScenarioID)
	setField(b, "title", upd.Title)
	setField(b, "system_prompt", upd.SystemPrompt)
	setField(b, "model_id", upd.ModelID)
	setField(b, "sampling_params", upd.SamplingParams)
	if b.empty() {
		return nil
	}
	b.setRaw("updated_at = now()")

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping chat session update", zap.Int64("sessionID", id), zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("UPDATE chat_sessions SET %s WHERE id = $%d AND user_id = $%d", b.clause(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	cmdTag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update chat session", zap.Int64("sessionID", id), zap.Error(err))
		return fmt.Errorf("failed to update chat session %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized chat session", zap.Int64("sessionID", id), zap.Int64("userID", userID))
		return models.ErrNotFound
	}
	return nil
}

// DeleteSession removes the session's messages and then the session itself,
// inside one transaction.
func (r *pgChatRepository) DeleteSession(ctx context.Context, id, userID int64) error {
	err := r.provider.InTransaction(ctx, func(tx pgx.Tx) error {
		for _, table := range chatSessionChildTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE session_id = $1", table), id); err != nil {
				return fmt.Errorf("failed to delete %s for chat session %d: %w", table, id, err)
			}
		}
		cmdTag, err := tx.Exec(ctx, deleteChatSessionQuery, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete chat session %d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			r.logger.Warn("Store unavailable, skipping chat session delete", zap.Int64("sessionID", id), zap.Error(err))
			return nil
		}
		if errors.Is(err, models.ErrNotFound) {
			r.logger.Warn("Attempted to delete non-existent or unauthorized chat session", zap.Int64("sessionID", id), zap.Int64("userID", userID))
			return nil
		}
		r.logger.Error("Failed to cascade-delete chat session", zap.Int64("sessionID", id), zap.Error(err))
		return err
	}

	r.logger.Info("Chat session deleted", zap.Int64("sessionID", id), zap.Int64("userID", userID))
	return nil
}

func (r *pgChatRepository) AddMessage(ctx context.Context, userID int64, message *models.ChatMessage) (int64, error) {
	if !message.MessageType.Valid() {
		return 0, models.ErrInvalidMessage
	}

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Error("Store unavailable, cannot add chat message", zap.Error(err))
		return 0, err
	}

	var id int64
	err = db.QueryRow(ctx, addChatMessageQuery,
		message.SessionID, message.MessageType, message.CharacterLabel,
		message.CharacterName, message.Content, message.IsSticky, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Attempted to add message to non-existent or unauthorized chat session",
				zap.Int64("sessionID", message.SessionID), zap.Int64("userID", userID))
			return 0, models.ErrNotFound
		}
		r.logger.Error("Failed to add chat message", zap.Int64("sessionID", message.SessionID), zap.Error(err))
		return 0, fmt.Errorf("failed to add chat message: %w", err)
	}
	return id, nil
}

func (r *pgChatRepository) ListMessages(ctx context.Context, sessionID, userID int64) ([]models.ChatMessage, error) {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, returning empty chat message list", zap.Error(err))
		return []models.ChatMessage{}, nil
	}

	messages := make([]models.ChatMessage, 0)
	if err := pgxscan.Select(ctx, db, &messages, listChatMessagesQuery, sessionID, userID); err != nil {
		r.logger.Error("Failed to list chat messages", zap.Int64("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

func (r *pgChatRepository) DeleteMessage(ctx context.Context, id, userID int64) error {
	db, err := r.provider.Acquire(ctx)
	if err != nil {
		r.logger.Warn("Store unavailable, skipping chat message delete", zap.Int64("messageID", id), zap.Error(err))
		return nil
	}

	cmdTag, err := db.Exec(ctx, deleteChatMessageQuery, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete chat message", zap.Int64("messageID", id), zap.Error(err))
		return fmt.Errorf("failed to delete chat message %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized chat message", zap.Int64("messageID", id), zap.Int64("userID", userID))
	}
	return nil
}
