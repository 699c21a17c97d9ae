package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestGetLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"":        logrus.InfoLevel,
		"chatty":  logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, GetLevel(in), in)
	}
}

func TestCombinedWriter_Write(t *testing.T) {
	sb1 := &strings.Builder{}
	sb2 := &strings.Builder{}

	cw := NewCombinedWriter(sb1, sb2)
	require.Len(t, cw.Writers, 2)

	msg := "rep counted"
	n, err := cw.Write([]byte(msg))
	require.NoError(t, err)
	assert.Equal(t, 2*len(msg), n)
	assert.Equal(t, msg, sb1.String())
	assert.Equal(t, msg, sb2.String())
}

func TestCombinedWriter_Errors(t *testing.T) {
	errA := errors.New("disk full")
	errB := errors.New("closed pipe")
	sb := &strings.Builder{}

	cw := NewCombinedWriter(failingWriter{errA}, sb, failingWriter{errB})
	n, err := cw.Write([]byte("x"))
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestSetup_StdoutOnly(t *testing.T) {
	logger := logrus.New()
	out := &strings.Builder{}

	closer := setup(logger, out, LoggerSetupParams{LogLevel: "debug", LogFormatJSON: true})
	assert.Nil(t, closer)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("exercise", "squats").Debug("session started")
	assert.Contains(t, out.String(), `"exercise":"squats"`)
}

func TestSetup_FileAndStdout(t *testing.T) {
	logger := logrus.New()
	out := &strings.Builder{}
	base := filepath.Join(t.TempDir(), "fitflow")

	closer := setup(logger, out, LoggerSetupParams{LogFileName: base, LogToStdout: true, LogLevel: "info"})
	require.NotNil(t, closer)

	logger.Info("session stopped")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "session stopped")
	assert.Contains(t, out.String(), "session stopped")
}
