package logger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	dev, err := New("development")
	assert.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))

	prod, err := New("production")
	assert.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))
	assert.True(t, prod.Core().Enabled(zap.InfoLevel))
}
