package database_test

import (
	"context"
	"testing"
	"time"

	"tale-server/internal/database"
	"tale-server/internal/models"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const integrationOwnerOpenID = "integration-owner"

// RepositoryIntegrationSuite runs every repository against a disposable
// PostgreSQL container with the embedded migrations applied.
type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	provider    *database.Provider
	repos       database.Repositories
	logger      *zap.Logger
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	require.NoError(s.T(), database.RunMigrations(connStr), "Failed to run migrations")

	s.provider = database.NewProvider(connStr, s.logger)
	_, err = s.provider.Acquire(s.ctx)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	s.repos = database.NewRepositories(s.provider, integrationOwnerOpenID, s.logger)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.provider != nil {
		s.provider.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
}

// SetupTest wipes all data so tests stay independent. Truncating users
// cascades through every owner-scoped table.
func (s *RepositoryIntegrationSuite) SetupTest() {
	db, err := s.provider.Acquire(s.ctx)
	require.NoError(s.T(), err)
	_, err = db.Exec(s.ctx, "TRUNCATE TABLE users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositoryIntegrationSuite))
}

// mustUpsertUser creates (or refreshes) a user for the given openId.
func (s *RepositoryIntegrationSuite) mustUpsertUser(openID string) *models.User {
	user, err := s.repos.Users.Upsert(s.ctx, models.UserIdentity{OpenID: openID})
	require.NoError(s.T(), err)
	require.NotZero(s.T(), user.ID)
	return user
}

// --- Users ---

func (s *RepositoryIntegrationSuite) TestUpsertOnLogin() {
	t := s.T()
	openID := uuid.NewString()

	first, err := s.repos.Users.Upsert(s.ctx, models.UserIdentity{
		OpenID: openID,
		Name:   models.Set("Alice"),
		Email:  models.Set("alice@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, openID, first.OpenID)
	require.Equal(t, models.RoleUser, first.Role, "non-owner logins default to the user role")
	require.NotNil(t, first.Name)
	require.Equal(t, "Alice", *first.Name)
	require.NotNil(t, first.LastSignedIn)

	// Second login: absent fields stay, supplied fields update, empty
	// string clears.
	second, err := s.repos.Users.Upsert(s.ctx, models.UserIdentity{
		OpenID: openID,
		Email:  models.Set(""),
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "upsert must reuse the existing row")
	require.NotNil(t, second.Name)
	require.Equal(t, "Alice", *second.Name, "absent name must stay untouched")
	require.Nil(t, second.Email, "empty string must clear the email")
	require.NotNil(t, second.LastSignedIn)
	require.False(t, second.LastSignedIn.Before(*first.LastSignedIn))
}

func (s *RepositoryIntegrationSuite) TestUpsertOwnerBecomesAdmin() {
	t := s.T()
	owner := s.mustUpsertUser(integrationOwnerOpenID)
	require.Equal(t, models.RoleAdmin, owner.Role)

	stranger := s.mustUpsertUser(uuid.NewString())
	require.Equal(t, models.RoleUser, stranger.Role)
}

func (s *RepositoryIntegrationSuite) TestGetUser() {
	t := s.T()
	created := s.mustUpsertUser(uuid.NewString())

	byOpenID, err := s.repos.Users.GetByOpenID(s.ctx, created.OpenID)
	require.NoError(t, err)
	require.Equal(t, created.ID, byOpenID.ID)

	byID, err := s.repos.Users.GetByID(s.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.OpenID, byID.OpenID)

	_, err = s.repos.Users.GetByOpenID(s.ctx, "no-such-open-id")
	require.ErrorIs(t, err, models.ErrNotFound)
}

// --- Characters / ownership ---

func (s *RepositoryIntegrationSuite) TestCharacterCRUD() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())

	desc := "a wandering knight"
	id, err := s.repos.Characters.Create(s.ctx, &models.Character{
		UserID:             user.ID,
		Name:               "Roland",
		Label:              "roland",
		PromptDescription:  "stoic knight",
		DisplayDescription: &desc,
	})
	require.NoError(t, err)

	got, err := s.repos.Characters.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Roland", got.Name)
	require.NotNil(t, got.DisplayDescription)

	// Partial update: clear the display description, leave everything else.
	err = s.repos.Characters.Update(s.ctx, id, user.ID, models.CharacterUpdate{
		DisplayDescription: models.Null[string](),
	})
	require.NoError(t, err)

	got, err = s.repos.Characters.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.Nil(t, got.DisplayDescription, "explicit null must clear the column")
	require.Equal(t, "Roland", got.Name, "absent fields must stay untouched")

	require.NoError(t, s.repos.Characters.Delete(s.ctx, id, user.ID))
	_, err = s.repos.Characters.Get(s.ctx, id, user.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestCharacterOwnershipIsolation() {
	t := s.T()
	alice := s.mustUpsertUser(uuid.NewString())
	bob := s.mustUpsertUser(uuid.NewString())

	id, err := s.repos.Characters.Create(s.ctx, &models.Character{
		UserID: alice.ID, Name: "Roland", Label: "roland", PromptDescription: "knight",
	})
	require.NoError(t, err)

	_, err = s.repos.Characters.Get(s.ctx, id, bob.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	err = s.repos.Characters.Update(s.ctx, id, bob.ID, models.CharacterUpdate{Name: models.Set("Hijacked")})
	require.ErrorIs(t, err, models.ErrNotFound)

	// Cross-owner delete is a silent no-op that leaves the row intact.
	require.NoError(t, s.repos.Characters.Delete(s.ctx, id, bob.ID))
	got, err := s.repos.Characters.Get(s.ctx, id, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Roland", got.Name)

	bobList, err := s.repos.Characters.ListByUser(s.ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, bobList)
}

// --- Scenarios ---

func (s *RepositoryIntegrationSuite) createScenarioWithChildren(userID int64) int64 {
	t := s.T()
	scenarioID, err := s.repos.Scenarios.Create(s.ctx, &models.Scenario{
		UserID:            userID,
		Title:             "The Siege",
		PromptDescription: "a city under siege",
		IsPublic:          true,
	})
	require.NoError(t, err)

	for i, label := range []string{"narrator", "roland"} {
		_, err = s.repos.Scenarios.AddCharacter(s.ctx, userID, &models.ScenarioCharacter{
			ScenarioID:        scenarioID,
			Name:              label,
			Label:             label,
			PromptDescription: "cast member",
			OrderIndex:        int32(i),
		})
		require.NoError(t, err)
	}
	_, err = s.repos.Scenarios.AddInteraction(s.ctx, userID, &models.ScenarioInteraction{
		ScenarioID:      scenarioID,
		InteractionType: models.InteractionMessage,
		Content:         "The gates hold, for now.",
		IsSticky:        true,
		OrderIndex:      0,
	})
	require.NoError(t, err)
	return scenarioID
}

func (s *RepositoryIntegrationSuite) TestScenarioPublicDetail() {
	t := s.T()
	alice := s.mustUpsertUser(uuid.NewString())
	bob := s.mustUpsertUser(uuid.NewString())
	scenarioID := s.createScenarioWithChildren(alice.ID)

	// Detail and child reads are keyed by id alone, so another user can
	// view a public scenario.
	scenario, err := s.repos.Scenarios.GetByID(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, scenario.UserID)

	characters, err := s.repos.Scenarios.ListCharacters(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Len(t, characters, 2)

	// Writes still require ownership.
	_, err = s.repos.Scenarios.AddCharacter(s.ctx, bob.ID, &models.ScenarioCharacter{
		ScenarioID: scenarioID, Name: "intruder", Label: "intruder",
	})
	require.ErrorIs(t, err, models.ErrNotFound)

	err = s.repos.Scenarios.UpdateCharacter(s.ctx, characters[0].ID, bob.ID,
		models.ScenarioCharacterUpdate{Name: models.Set("hijacked")})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestScenarioChildOrdering() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())
	scenarioID, err := s.repos.Scenarios.Create(s.ctx, &models.Scenario{
		UserID: user.ID, Title: "Ordering", PromptDescription: "p",
	})
	require.NoError(t, err)

	// Insert out of order; ties broken by insertion order.
	for _, c := range []struct {
		label string
		order int32
	}{{"third", 2}, {"first", 0}, {"second", 1}, {"fourth", 2}} {
		_, err = s.repos.Scenarios.AddCharacter(s.ctx, user.ID, &models.ScenarioCharacter{
			ScenarioID: scenarioID, Name: c.label, Label: c.label, OrderIndex: c.order,
		})
		require.NoError(t, err)
	}

	characters, err := s.repos.Scenarios.ListCharacters(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Len(t, characters, 4)
	var labels []string
	for _, c := range characters {
		labels = append(labels, c.Label)
	}
	require.Equal(t, []string{"first", "second", "third", "fourth"}, labels)
}

func (s *RepositoryIntegrationSuite) TestScenarioCascadeDelete() {
	t := s.T()
	alice := s.mustUpsertUser(uuid.NewString())
	bob := s.mustUpsertUser(uuid.NewString())
	scenarioID := s.createScenarioWithChildren(alice.ID)

	// A non-owner delete must roll back without touching the children.
	require.NoError(t, s.repos.Scenarios.Delete(s.ctx, scenarioID, bob.ID))
	characters, err := s.repos.Scenarios.ListCharacters(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Len(t, characters, 2, "failed parent delete must not strip children")

	require.NoError(t, s.repos.Scenarios.Delete(s.ctx, scenarioID, alice.ID))

	_, err = s.repos.Scenarios.GetByID(s.ctx, scenarioID)
	require.ErrorIs(t, err, models.ErrNotFound)
	characters, err = s.repos.Scenarios.ListCharacters(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Empty(t, characters)
	interactions, err := s.repos.Scenarios.ListInteractions(s.ctx, scenarioID)
	require.NoError(t, err)
	require.Empty(t, interactions)
}

func (s *RepositoryIntegrationSuite) TestScenarioCopy() {
	t := s.T()
	alice := s.mustUpsertUser(uuid.NewString())
	bob := s.mustUpsertUser(uuid.NewString())
	sourceID := s.createScenarioWithChildren(alice.ID)

	copyID, err := s.repos.Scenarios.Copy(s.ctx, sourceID, bob.ID)
	require.NoError(t, err)
	require.NotEqual(t, sourceID, copyID)

	clone, err := s.repos.Scenarios.GetByID(s.ctx, copyID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, clone.UserID)
	require.Equal(t, "The Siege (Copy)", clone.Title)
	require.False(t, clone.IsPublic, "copies are always private")

	sourceChars, err := s.repos.Scenarios.ListCharacters(s.ctx, sourceID)
	require.NoError(t, err)
	cloneChars, err := s.repos.Scenarios.ListCharacters(s.ctx, copyID)
	require.NoError(t, err)
	require.Len(t, cloneChars, len(sourceChars))
	for i := range sourceChars {
		require.Equal(t, sourceChars[i].Label, cloneChars[i].Label)
		require.Equal(t, sourceChars[i].OrderIndex, cloneChars[i].OrderIndex)
		require.NotEqual(t, sourceChars[i].ID, cloneChars[i].ID)
	}

	cloneInteractions, err := s.repos.Scenarios.ListInteractions(s.ctx, copyID)
	require.NoError(t, err)
	require.Len(t, cloneInteractions, 1)
	require.Equal(t, "The gates hold, for now.", cloneInteractions[0].Content)
	require.True(t, cloneInteractions[0].IsSticky)

	// The source is untouched.
	source, err := s.repos.Scenarios.GetByID(s.ctx, sourceID)
	require.NoError(t, err)
	require.Equal(t, "The Siege", source.Title)
	require.True(t, source.IsPublic)

	_, err = s.repos.Scenarios.Copy(s.ctx, 999999, bob.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

// --- Chat sessions ---

func (s *RepositoryIntegrationSuite) TestChatSessionLifecycle() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())

	temp := 0.8
	sessionID, err := s.repos.Chats.CreateSession(s.ctx, &models.ChatSession{
		UserID:         user.ID,
		Title:          "Night Watch",
		ModelID:        "model-a",
		SamplingParams: models.SamplingParams{Temperature: &temp},
	})
	require.NoError(t, err)

	session, err := s.repos.Chats.GetSession(s.ctx, sessionID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, session.SamplingParams.Temperature)
	require.Equal(t, 0.8, *session.SamplingParams.Temperature)

	err = s.repos.Chats.UpdateSession(s.ctx, sessionID, user.ID, models.ChatSessionUpdate{
		Title: models.Set("Night Watch II"),
	})
	require.NoError(t, err)
	session, err = s.repos.Chats.GetSession(s.ctx, sessionID, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Night Watch II", session.Title)
	require.NotNil(t, session.SamplingParams.Temperature, "params must survive an unrelated update")
}

func (s *RepositoryIntegrationSuite) TestChatMessages() {
	t := s.T()
	alice := s.mustUpsertUser(uuid.NewString())
	bob := s.mustUpsertUser(uuid.NewString())

	sessionID, err := s.repos.Chats.CreateSession(s.ctx, &models.ChatSession{
		UserID: alice.ID, Title: "t", ModelID: "m",
	})
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, err = s.repos.Chats.AddMessage(s.ctx, alice.ID, &models.ChatMessage{
			SessionID:   sessionID,
			MessageType: models.MessageTypeUser,
			Content:     content,
		})
		require.NoError(t, err)
	}

	// Message writes prove session ownership inside the statement.
	_, err = s.repos.Chats.AddMessage(s.ctx, bob.ID, &models.ChatMessage{
		SessionID: sessionID, MessageType: models.MessageTypeUser, Content: "intruder",
	})
	require.ErrorIs(t, err, models.ErrNotFound)

	messages, err := s.repos.Chats.ListMessages(s.ctx, sessionID, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "one", messages[0].Content)
	require.Equal(t, "three", messages[2].Content)

	// A foreign reader sees nothing.
	foreign, err := s.repos.Chats.ListMessages(s.ctx, sessionID, bob.ID)
	require.NoError(t, err)
	require.Empty(t, foreign)

	// Cross-owner message delete is silent and ineffective.
	require.NoError(t, s.repos.Chats.DeleteMessage(s.ctx, messages[0].ID, bob.ID))
	messages, err = s.repos.Chats.ListMessages(s.ctx, sessionID, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	require.NoError(t, s.repos.Chats.DeleteMessage(s.ctx, messages[0].ID, alice.ID))
	messages, err = s.repos.Chats.ListMessages(s.ctx, sessionID, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Session delete cascades to remaining messages.
	require.NoError(t, s.repos.Chats.DeleteSession(s.ctx, sessionID, alice.ID))
	_, err = s.repos.Chats.GetSession(s.ctx, sessionID, alice.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	messages, err = s.repos.Chats.ListMessages(s.ctx, sessionID, alice.ID)
	require.NoError(t, err)
	require.Empty(t, messages)
}

// --- Stories ---

func (s *RepositoryIntegrationSuite) TestStoryLifecycle() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())

	storyID, err := s.repos.Stories.Create(s.ctx, &models.Story{
		UserID:  user.ID,
		Title:   "Winter Chronicle",
		ModelID: "model-a",
	})
	require.NoError(t, err)

	for i, name := range []string{"Roland", "Mira"} {
		_, err = s.repos.Stories.AddCharacter(s.ctx, user.ID, &models.StoryCharacter{
			StoryID: storyID, Name: name, OrderIndex: int32(i),
		})
		require.NoError(t, err)
	}

	cast, err := s.repos.Stories.ListCharacters(s.ctx, storyID, user.ID)
	require.NoError(t, err)
	require.Len(t, cast, 2)
	require.Equal(t, "Roland", cast[0].Name)

	// Fill in the generated content once the generator finishes.
	err = s.repos.Stories.Update(s.ctx, storyID, user.ID, models.StoryUpdate{
		Content: models.Set("It was a long winter."),
	})
	require.NoError(t, err)
	story, err := s.repos.Stories.Get(s.ctx, storyID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, story.Content)
	require.Equal(t, "It was a long winter.", *story.Content)

	require.NoError(t, s.repos.Stories.Delete(s.ctx, storyID, user.ID))
	_, err = s.repos.Stories.Get(s.ctx, storyID, user.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	cast, err = s.repos.Stories.ListCharacters(s.ctx, storyID, user.ID)
	require.NoError(t, err)
	require.Empty(t, cast)
}

// --- API keys ---

func (s *RepositoryIntegrationSuite) TestAPIKeyLifecycle() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())

	id, err := s.repos.APIKeys.Create(s.ctx, &models.APIKey{
		UserID: user.ID, KeyName: "openrouter", EncryptedKey: "ciphertext-1",
	})
	require.NoError(t, err)

	got, err := s.repos.APIKeys.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.Equal(t, "openrouter", got.KeyName)
	require.Nil(t, got.LastUsed)

	used := time.Now().UTC().Truncate(time.Microsecond)
	err = s.repos.APIKeys.Update(s.ctx, id, user.ID, models.APIKeyUpdate{
		LastUsed: models.Set(used),
	})
	require.NoError(t, err)
	got, err = s.repos.APIKeys.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsed)
	require.WithinDuration(t, used, *got.LastUsed, time.Millisecond)

	require.NoError(t, s.repos.APIKeys.Delete(s.ctx, id, user.ID))
	keys, err := s.repos.APIKeys.ListByUser(s.ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, keys)
}

// --- Generated images ---

func (s *RepositoryIntegrationSuite) TestGeneratedImageLifecycle() {
	t := s.T()
	user := s.mustUpsertUser(uuid.NewString())

	id, err := s.repos.GeneratedImages.Create(s.ctx, &models.GeneratedImage{
		UserID:        user.ID,
		IncludePrompt: "castle at dusk",
		CfgScale:      7.5,
		Fidelity:      0.6,
		AspectRatio:   "16:9",
	})
	require.NoError(t, err)

	got, err := s.repos.GeneratedImages.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.Nil(t, got.ImageURL, "result fields start empty")

	url := "https://cdn.example.com/img.png"
	err = s.repos.GeneratedImages.Update(s.ctx, id, user.ID, models.GeneratedImageUpdate{
		Seed:     models.Set(int64(1234)),
		ImageURL: models.Set(url),
	})
	require.NoError(t, err)

	got, err = s.repos.GeneratedImages.Get(s.ctx, id, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Seed)
	require.Equal(t, int64(1234), *got.Seed)
	require.NotNil(t, got.ImageURL)
	require.Equal(t, url, *got.ImageURL)
}
