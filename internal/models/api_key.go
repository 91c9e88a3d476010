package models

import "time"

// APIKey stores the ciphertext form of a user-supplied provider key.
// Encryption and verification happen outside this layer.
type APIKey struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"userId"`
	KeyName      string     `db:"key_name" json:"keyName"`
	EncryptedKey string     `db:"encrypted_key" json:"-"`
	LastUsed     *time.Time `db:"last_used" json:"lastUsed,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// APIKeyUpdate is a partial update of an API key row.
type APIKeyUpdate struct {
	KeyName      Field[string]
	EncryptedKey Field[string]
	LastUsed     Field[time.Time]
}
