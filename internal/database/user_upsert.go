package database

import (
	"fmt"
	"strings"
	"time"

	"tale-server/internal/models"
)

// userUpsert is a fully built insert-or-update plan for one login. Keeping
// the plan construction pure makes the defaulting rules testable without a
// database.
type userUpsert struct {
	columns []string
	args    []any
	updates []string
}

// insertSQL renders the single atomic statement keyed on open_id.
func (u userUpsert) insertSQL() string {
	placeholders := make([]string, len(u.columns))
	for i := range u.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		`INSERT INTO users (%s) VALUES (%s)
		 ON CONFLICT (open_id) DO UPDATE SET %s
		 RETURNING id, open_id, name, email, login_method, role, last_signed_in, created_at, updated_at`,
		strings.Join(u.columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(u.updates, ", "),
	)
}

// buildUserUpsert applies the login merge rules:
//   - only explicitly supplied fields enter the update set; an explicit
//     null (or empty string) clears the column;
//   - role defaults to admin when the openId matches the configured owner
//     identity and no role was supplied; otherwise an unspecified role is
//     left to the column default on first insert;
//   - last_signed_in defaults to now on insert;
//   - an otherwise empty update set becomes a last_signed_in touch, so every
//     login updates at least one field.
func buildUserUpsert(identity models.UserIdentity, ownerOpenID string, now time.Time) (userUpsert, error) {
	if identity.OpenID == "" {
		return userUpsert{}, models.ErrMissingOpenID
	}

	role := identity.Role
	if !role.IsSet() && ownerOpenID != "" && identity.OpenID == ownerOpenID {
		role = models.Set(models.RoleAdmin)
	}
	if role.IsSet() && !role.IsNull() && !role.Get().Valid() {
		return userUpsert{}, models.ErrInvalidRole
	}

	u := userUpsert{
		columns: []string{"open_id"},
		args:    []any{identity.OpenID},
	}

	addString := func(column string, f models.Field[string]) {
		if !f.IsSet() {
			return
		}
		u.columns = append(u.columns, column)
		u.args = append(u.args, nullableString(f))
		u.updates = append(u.updates, column+" = EXCLUDED."+column)
	}
	addString("name", identity.Name)
	addString("email", identity.Email)
	addString("login_method", identity.LoginMethod)

	if role.IsSet() {
		u.columns = append(u.columns, "role")
		if role.IsNull() {
			u.args = append(u.args, nil)
		} else {
			u.args = append(u.args, role.Get())
		}
		u.updates = append(u.updates, "role = EXCLUDED.role")
	}

	// last_signed_in is always inserted: the supplied value, or now.
	u.columns = append(u.columns, "last_signed_in")
	if identity.LastSignedIn.IsSet() && !identity.LastSignedIn.IsNull() {
		u.args = append(u.args, identity.LastSignedIn.Get())
		u.updates = append(u.updates, "last_signed_in = EXCLUDED.last_signed_in")
	} else {
		u.args = append(u.args, now)
		if identity.LastSignedIn.IsSet() {
			// Explicit null clears nothing sensible here; treat as a touch.
			u.updates = append(u.updates, "last_signed_in = EXCLUDED.last_signed_in")
		}
	}

	if len(u.updates) == 0 {
		u.updates = append(u.updates, "last_signed_in = EXCLUDED.last_signed_in")
	}
	u.updates = append(u.updates, "updated_at = now()")

	return u, nil
}

// nullableString normalizes a supplied string field for storage: explicit
// null and empty string both persist as NULL.
func nullableString(f models.Field[string]) *string {
	if f.IsNull() || f.Get() == "" {
		return nil
	}
	v := f.Get()
	return &v
}
