package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, DebugLevel, LevelFromString("debug"))
	assert.Equal(t, DebugLevel, LevelFromString("DEBUG"))
	assert.Equal(t, ErrorLevel, LevelFromString("error"))
	assert.Equal(t, InfoLevel, LevelFromString("info"))
	assert.Equal(t, InfoLevel, LevelFromString(""))
	assert.Equal(t, InfoLevel, LevelFromString("bogus"))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("GITRUN_LOG_LEVEL", "debug")
	t.Setenv("GITRUN_LOG_FORMAT", "json")

	l, err := NewFromEnv()
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestWithFieldsReturnsNewLogger(t *testing.T) {
	base := NewNop()
	derived := base.WithFields(map[string]interface{}{"component": "runner"})
	assert.NotSame(t, base, derived)

	derived2 := base.WithField("invocation", "abc")
	assert.NotSame(t, base, derived2)
}

func TestGlobalLoggerSwap(t *testing.T) {
	orig := Get()
	defer Set(orig)

	replacement := NewNop()
	Set(replacement)
	assert.Same(t, replacement, Get())
}
