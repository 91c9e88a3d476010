package database

import (
	"tale-server/internal/interfaces"

	"go.uber.org/zap"
)

// Repositories bundles every store-backed repository for the procedure layer.
type Repositories struct {
	Users           interfaces.UserRepository
	APIKeys         interfaces.APIKeyRepository
	Characters      interfaces.CharacterRepository
	Scenarios       interfaces.ScenarioRepository
	Chats           interfaces.ChatRepository
	Stories         interfaces.StoryRepository
	GeneratedImages interfaces.GeneratedImageRepository
}

// NewRepositories wires all repositories onto one shared provider.
func NewRepositories(provider *Provider, ownerOpenID string, logger *zap.Logger) Repositories {
	return Repositories{
		Users:           NewPgUserRepository(provider, ownerOpenID, logger),
		APIKeys:         NewPgAPIKeyRepository(provider, logger),
		Characters:      NewPgCharacterRepository(provider, logger),
		Scenarios:       NewPgScenarioRepository(provider, logger),
		Chats:           NewPgChatRepository(provider, logger),
		Stories:         NewPgStoryRepository(provider, logger),
		GeneratedImages: NewPgGeneratedImageRepository(provider, logger),
	}
}
