package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLabel(t *testing.T) {
	valid := []string{"a", "narrator", "char_2", "0", strings.Repeat("x", 100)}
	for _, label := range valid {
		assert.NoError(t, ValidateLabel(label), "label %q should be valid", label)
	}

	invalid := []string{"", "Hero", "with space", "dash-ed", "émile", strings.Repeat("x", 101)}
	for _, label := range invalid {
		assert.ErrorIs(t, ValidateLabel(label), ErrInvalidLabel, "label %q should be rejected", label)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())

	assert.True(t, InteractionText.Valid())
	assert.False(t, InteractionType("banter").Valid())

	assert.True(t, MessageTypeSystem.Valid())
	assert.False(t, MessageType("assistant").Valid())
}
