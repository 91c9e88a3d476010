package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldStates(t *testing.T) {
	var absent Field[string]
	assert.False(t, absent.IsSet(), "zero value should be absent")
	assert.False(t, absent.IsNull())
	assert.Nil(t, absent.Ptr())

	set := Set("hello")
	assert.True(t, set.IsSet())
	assert.False(t, set.IsNull())
	assert.Equal(t, "hello", set.Get())
	require.NotNil(t, set.Ptr())
	assert.Equal(t, "hello", *set.Ptr())

	null := Null[string]()
	assert.True(t, null.IsSet(), "explicit null is still provided")
	assert.True(t, null.IsNull())
	assert.Nil(t, null.Ptr())
}

func TestFieldSetEmptyStringIsNotNull(t *testing.T) {
	// An explicitly provided empty value is distinct from "not provided".
	empty := Set("")
	assert.True(t, empty.IsSet())
	assert.False(t, empty.IsNull())
	require.NotNil(t, empty.Ptr())
	assert.Equal(t, "", *empty.Ptr())
}

func TestFieldPtrCopies(t *testing.T) {
	f := Set(42)
	p := f.Ptr()
	*p = 7
	assert.Equal(t, 42, f.Get(), "Ptr must not alias the stored value")
}
