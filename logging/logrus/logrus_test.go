package logrus

import (
	"io"
	"testing"

	"github.com/presbrey/b64/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	base.SetOutput(io.Discard)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Debug("debug", nil)
	l.Info("encoded", logging.Fields{"bytes": 3})
	l.Warn("warn", nil)
	l.Error("failed", logging.Fields{"offset": 4})

	require.Len(t, hook.AllEntries(), 4)
	info := hook.AllEntries()[1]
	assert.Equal(t, logrus.InfoLevel, info.Level)
	assert.Equal(t, "encoded", info.Message)
	assert.Equal(t, 3, info.Data["bytes"])
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNew(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.E.Logger.GetLevel())

	_, err = New("loud")
	assert.Error(t, err)
}
