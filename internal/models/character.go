package models

import "time"

// Character is a user-authored persona usable across scenarios and chats.
type Character struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             int64     `db:"user_id" json:"userId"`
	Name               string    `db:"name" json:"name"`
	Label              string    `db:"label" json:"label"`
	PromptDescription  string    `db:"prompt_description" json:"promptDescription"`
	DisplayDescription *string   `db:"display_description" json:"displayDescription,omitempty"`
	ImageURL           *string   `db:"image_url" json:"imageUrl,omitempty"`
	IsUserCharacter    bool      `db:"is_user_character" json:"isUserCharacter"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// CharacterUpdate is a partial update of a character row.
type CharacterUpdate struct {
	Name               Field[string]
	Label              Field[string]
	PromptDescription  Field[string]
	DisplayDescription Field[string]
	ImageURL           Field[string]
	IsUserCharacter    Field[bool]
}
