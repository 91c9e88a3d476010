package models

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account merged from an external identity provider.
type User struct {
	ID           int64      `db:"id" json:"id"`
	OpenID       string     `db:"open_id" json:"openId"`
	Name         *string    `db:"name" json:"name,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty"`
	LoginMethod  *string    `db:"login_method" json:"loginMethod,omitempty"`
	Role         Role       `db:"role" json:"role"`
	LastSignedIn *time.Time `db:"last_signed_in" json:"lastSignedIn,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserIdentity is the upsert-on-login input. OpenID is mandatory; every
// other field is optional and only written when explicitly supplied.
type UserIdentity struct {
	OpenID       string
	Name         Field[string]
	Email        Field[string]
	LoginMethod  Field[string]
	Role         Field[Role]
	LastSignedIn Field[time.Time]
}
