package models

import "regexp"

var labelPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateLabel checks the machine-readable label constraint shared by
// characters and scenario characters: lowercase alphanumerics and
// underscores, 1-100 characters.
func ValidateLabel(label string) error {
	if len(label) < 1 || len(label) > 100 {
		return ErrInvalidLabel
	}
	if !labelPattern.MatchString(label) {
		return ErrInvalidLabel
	}
	return nil
}
