package database

import (
	"testing"

	"tale-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUpdateBuilderNumbering(t *testing.T) {
	b := newUpdateBuilder()
	b.set("name", "hero")
	b.setRaw("image_url = NULL")
	b.set("order_index", 3)

	assert.Equal(t, "name = $1, image_url = NULL, order_index = $2", b.clause())
	assert.Equal(t, []any{"hero", 3}, b.args)
	assert.Equal(t, 3, b.next(), "WHERE placeholders continue after the SET list")
	assert.False(t, b.empty())
}

func TestUpdateBuilderEmpty(t *testing.T) {
	b := newUpdateBuilder()
	assert.True(t, b.empty())
	assert.Equal(t, 1, b.next())
}

func TestSetField(t *testing.T) {
	b := newUpdateBuilder()
	setField(b, "title", models.Field[string]{}) // absent: no assignment
	setField(b, "image_url", models.Null[string]())
	setField(b, "content", models.Set("once upon a time"))

	assert.Equal(t, "image_url = NULL, content = $1", b.clause())
	assert.Equal(t, []any{"once upon a time"}, b.args)
}

func TestCascadeOrderDeletesChildrenFirst(t *testing.T) {
	// The cascade loops delete these tables before the parent row; the
	// slices must list every dependent table exactly once.
	assert.Equal(t, []string{"scenario_interactions", "scenario_characters"}, scenarioChildTables)
	assert.Equal(t, []string{"chat_messages"}, chatSessionChildTables)
	assert.Equal(t, []string{"story_characters"}, storyChildTables)
}
