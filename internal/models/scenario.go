package models

import "time"

// InteractionType classifies a pre-authored scenario interaction.
type InteractionType string

const (
	InteractionMessage     InteractionType = "message"
	InteractionText        InteractionType = "text"
	InteractionInstruction InteractionType = "instruction"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionMessage, InteractionText, InteractionInstruction:
		return true
	}
	return false
}

// Scenario is a reusable role-play setting. Public scenarios are readable
// by any user; everything else is owner-scoped.
type Scenario struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             int64     `db:"user_id" json:"userId"`
	Title              string    `db:"title" json:"title"`
	PromptDescription  string    `db:"prompt_description" json:"promptDescription"`
	DisplayDescription *string   `db:"display_description" json:"displayDescription,omitempty"`
	ImageURL           *string   `db:"image_url" json:"imageUrl,omitempty"`
	IsPublic           bool      `db:"is_public" json:"isPublic"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// ScenarioUpdate is a partial update of a scenario row.
type ScenarioUpdate struct {
	Title              Field[string]
	PromptDescription  Field[string]
	DisplayDescription Field[string]
	ImageURL           Field[string]
	IsPublic           Field[bool]
}

// ScenarioCharacter is an ordered character slot within a scenario. It may
// reference a library character or stand alone.
type ScenarioCharacter struct {
	ID                int64     `db:"id" json:"id"`
	ScenarioID        int64     `db:"scenario_id" json:"scenarioId"`
	CharacterID       *int64    `db:"character_id" json:"characterId,omitempty"`
	Name              string    `db:"name" json:"name"`
	Label             string    `db:"label" json:"label"`
	PromptDescription string    `db:"prompt_description" json:"promptDescription"`
	IsUserCharacter   bool      `db:"is_user_character" json:"isUserCharacter"`
	OrderIndex        int32     `db:"order_index" json:"orderIndex"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// ScenarioCharacterUpdate is a partial update of a scenario character row.
type ScenarioCharacterUpdate struct {
	CharacterID       Field[int64]
	Name              Field[string]
	Label             Field[string]
	PromptDescription Field[string]
	IsUserCharacter   Field[bool]
	OrderIndex        Field[int32]
}

// ScenarioInteraction is an ordered pre-authored opener or instruction.
// Sticky interactions survive generation resets downstream.
type ScenarioInteraction struct {
	ID              int64           `db:"id" json:"id"`
	ScenarioID      int64           `db:"scenario_id" json:"scenarioId"`
	InteractionType InteractionType `db:"interaction_type" json:"interactionType"`
	CharacterLabel  *string         `db:"character_label" json:"characterLabel,omitempty"`
	Content         string          `db:"content" json:"content"`
	IsSticky        bool            `db:"is_sticky" json:"isSticky"`
	OrderIndex      int32           `db:"order_index" json:"orderIndex"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// ScenarioInteractionUpdate is a partial update of a scenario interaction row.
type ScenarioInteractionUpdate struct {
	InteractionType Field[InteractionType]
	CharacterLabel  Field[string]
	Content         Field[string]
	IsSticky        Field[bool]
	OrderIndex      Field[int32]
}
