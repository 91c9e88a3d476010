package models

import "time"

// GeneratedImage records an image generation request and, once the external
// generator finishes, the resulting URL and seed.
type GeneratedImage struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"userId"`
	IncludePrompt string    `db:"include_prompt" json:"includePrompt"`
	ExcludePrompt *string   `db:"exclude_prompt" json:"excludePrompt,omitempty"`
	CfgScale      float64   `db:"cfg_scale" json:"cfgScale"`
	Fidelity      float64   `db:"fidelity" json:"fidelity"`
	AspectRatio   string    `db:"aspect_ratio" json:"aspectRatio"`
	Style         *string   `db:"style" json:"style,omitempty"`
	Seed          *int64    `db:"seed" json:"seed,omitempty"`
	ImageURL      *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// GeneratedImageUpdate is a partial update of a generated image row,
// typically filled in when the external generator completes.
type GeneratedImageUpdate struct {
	Seed     Field[int64]
	ImageURL Field[string]
}
