package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_LevelsAndFields(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...Field)
		message string
	}{
		{"debug", func(l Logger, m string, f ...Field) { l.Debug(m, f...) }, "debug message"},
		{"info", func(l Logger, m string, f ...Field) { l.Info(m, f...) }, "info message"},
		{"warn", func(l Logger, m string, f ...Field) { l.Warn(m, f...) }, "warn message"},
		{"error", func(l Logger, m string, f ...Field) { l.Error(m, f...) }, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)
			tt.logFunc(logger, tt.message, F(FieldSupervisor, "Jeremy"))

			assert.Contains(t, buf.String(), tt.message)
			assert.Contains(t, buf.String(), "supervisor=Jeremy")
		})
	}
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldModality, "cash").
		WithFields(F(FieldAmount, "11.00"), F(FieldCount, 2)).
		WithError(errors.New("disk full")).
		Error("snapshot failed")

	output := buf.String()
	assert.Contains(t, output, "snapshot failed")
	assert.Contains(t, output, "modality=cash")
	assert.Contains(t, output, "amount=11.00")
	assert.Contains(t, output, "disk full")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConvertFields(t *testing.T) {
	logrusFields := convertFields([]Field{F("a", "x"), F("b", 42), F("c", true)})
	assert.Len(t, logrusFields, 3)
	assert.Equal(t, 42, logrusFields["b"])

	assert.Len(t, convertFields(nil), 0)
}

func TestMockLogger_SharesEntriesWithChildren(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldSupervisor, "Jeremy")
	child.WithError(errors.New("boom")).Error("backup failed", F(FieldBackupPath, "/tmp/x.bcp"))
	mock.Info("plain")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.Equal(t, []Field{F(FieldSupervisor, "Jeremy"), F(FieldBackupPath, "/tmp/x.bcp")}, entries[0].Fields)
	assert.True(t, mock.HasEntry("INFO", "plain"))
	assert.Len(t, mock.EntriesByLevel("ERROR"), 1)

	mock.Clear()
	assert.Empty(t, mock.Entries())
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Fatalf("stop %d", 1)
	assert.True(t, mock.HasEntry("FATAL", "stop 1"))
}

func TestImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
