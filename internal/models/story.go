package models

import "time"

// Story is a generated long-form narrative owned by a user.
type Story struct {
	ID               int64          `db:"id" json:"id"`
	UserID           int64          `db:"user_id" json:"userId"`
	Title            string         `db:"title" json:"title"`
	PlotDescription  *string        `db:"plot_description" json:"plotDescription,omitempty"`
	StyleDescription *string        `db:"style_description" json:"styleDescription,omitempty"`
	Content          *string        `db:"content" json:"content,omitempty"`
	ModelID          string         `db:"model_id" json:"modelId"`
	SamplingParams   SamplingParams `db:"sampling_params" json:"samplingParams"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// StoryUpdate is a partial update of a story row.
type StoryUpdate struct {
	Title            Field[string]
	PlotDescription  Field[string]
	StyleDescription Field[string]
	Content          Field[string]
	ModelID          Field[string]
	SamplingParams   Field[SamplingParams]
}

// StoryCharacter is an ordered cast member of a story.
type StoryCharacter struct {
	ID          int64     `db:"id" json:"id"`
	StoryID     int64     `db:"story_id" json:"storyId"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	OrderIndex  int32     `db:"order_index" json:"orderIndex"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// StoryCharacterUpdate is a partial update of a story character row.
type StoryCharacterUpdate struct {
	Name        Field[string]
	Description Field[string]
	OrderIndex  Field[int32]
}
