package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{true, false} {
		logger, err := New(dev)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready", zap.Bool("development", dev))
		assert.NoError(t, Sync(logger))
	}
}

func TestNewDevelopmentEnablesDebug(t *testing.T) {
	t.Parallel()

	dev, err := New(true)
	require.NoError(t, err)
	assert.NotNil(t, dev.Check(zap.DebugLevel, "debug"))

	prod, err := New(false)
	require.NoError(t, err)
	assert.Nil(t, prod.Check(zap.DebugLevel, "debug"))
}

func TestSyncNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Sync(nil))

	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	logger.Info("hello")
	assert.NoError(t, Sync(logger))
	assert.Equal(t, 1, logs.Len())
}
