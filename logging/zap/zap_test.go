package zap

import (
	"testing"

	"github.com/presbrey/b64/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("debug", nil)
	l.Info("decoded", logging.Fields{"bytes": 15, "alphabet": "standard"})
	l.Warn("warn", logging.Fields{})
	l.Error("failed", logging.Fields{"offset": 4})

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "decoded", entries[1].Message)
	assert.Equal(t, int64(15), entries[1].ContextMap()["bytes"])
	assert.Equal(t, "standard", entries[1].ContextMap()["alphabet"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestNew(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)
	assert.NotNil(t, l.L)
	assert.False(t, l.L.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.L.Core().Enabled(zapcore.ErrorLevel))

	_, err = New("loud")
	assert.Error(t, err)
}
