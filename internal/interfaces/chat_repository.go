package interfaces

import (
	"context"

	"tale-server/internal/models"
)

// ChatRepository manages chat sessions and their messages, owner-scoped.
// Message ownership is proven through the parent session.
type ChatRepository interface {
	CreateSession(ctx context.Context, session *models.ChatSession) (int64, error)
	ListSessionsByUser(ctx context.Context, userID int64) ([]models.ChatSession, error)
	GetSession(ctx context.Context, id, userID int64) (*models.ChatSession, error)
	UpdateSession(ctx context.Context, id, userID int64, upd models.ChatSessionUpdate) error

	// DeleteSession removes the session and all of its messages, messages first.
	DeleteSession(ctx context.Context, id, userID int64) error

	AddMessage(ctx context.Context, userID int64, message *models.ChatMessage) (int64, error)
	ListMessages(ctx context.Context, sessionID, userID int64) ([]models.ChatMessage, error)
	DeleteMessage(ctx context.Context, id, userID int64) error
}
