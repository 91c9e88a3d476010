package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaults(t *testing.T) {
	logger, err := New(Config{})
	require.NoError(t, err)
	defer logger.Sync()
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDebugLevel(t *testing.T) {
	logger, err := New(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	defer logger.Sync()
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	logger, err := New(Config{Level: "loud"})
	require.NoError(t, err)
	defer logger.Sync()
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
