package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	lg := InitLogger("debug")
	assert.Same(t, lg, Lg)
	assert.True(t, lg.Core().Enabled(zapcore.DebugLevel))

	lg = InitLogger("not-a-level")
	assert.False(t, lg.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, lg.Core().Enabled(zapcore.InfoLevel))
}
