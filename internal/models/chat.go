package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MessageType classifies a stored chat message.
type MessageType string

const (
	MessageTypeMessage     MessageType = "message"
	MessageTypeText        MessageType = "text"
	MessageTypeInstruction MessageType = "instruction"
	MessageTypeUser        MessageType = "user"
	MessageTypeSystem      MessageType = "system"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeMessage, MessageTypeText, MessageTypeInstruction, MessageTypeUser, MessageTypeSystem:
		return true
	}
	return false
}

// SamplingParams holds per-session generation settings, stored as JSONB.
// Nil fields fall back to model defaults downstream.
type SamplingParams struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	MaxTokens        *int     `json:"maxTokens,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
}

// Value implements driver.Valuer so pgx can write the struct into a JSONB column.
func (p SamplingParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for reading the JSONB column back.
func (p *SamplingParams) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = SamplingParams{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return fmt.Errorf("cannot scan %T into SamplingParams", src)
}

// ChatSession is an interactive role-play conversation, optionally seeded
// from a scenario.
type ChatSession struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"userId"`
	ScenarioID     *int64         `db:"scenario_id" json:"scenarioId,omitempty"`
	Title          string         `db:"title" json:"title"`
	SystemPrompt   *string        `db:"system_prompt" json:"systemPrompt,omitempty"`
	ModelID        string         `db:"model_id" json:"modelId"`
	SamplingParams SamplingParams `db:"sampling_params" json:"samplingParams"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// ChatSessionUpdate is a partial update of a chat session row.
type ChatSessionUpdate struct {
	ScenarioID     Field[int64]
	Title          Field[string]
	SystemPrompt   Field[string]
	ModelID        Field[string]
	SamplingParams Field[SamplingParams]
}

// ChatMessage is a single turn in a chat session, ordered by creation time.
// Sticky messages survive generation resets downstream.
type ChatMessage struct {
	ID             int64       `db:"id" json:"id"`
	SessionID      int64       `db:"session_id" json:"sessionId"`
	MessageType    MessageType `db:"message_type" json:"messageType"`
	CharacterLabel *string     `db:"character_label" json:"characterLabel,omitempty"`
	CharacterName  *string     `db:"character_name" json:"characterName,omitempty"`
	Content        string      `db:"content" json:"content"`
	IsSticky       bool        `db:"is_sticky" json:"isSticky"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
}
