package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    LogLevel
		wantErr bool
	}{
		{name: "error", level: "error", want: LogLevelError},
		{name: "warn", level: "warn", want: LogLevelWarn},
		{name: "info", level: "info", want: LogLevelInfo},
		{name: "debug", level: "debug", want: LogLevelDebug},
		{name: "trace", level: "trace", want: LogLevelTrace},
		{name: "unknown", level: "verbose", want: LogLevelError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
			if !tt.wantErr {
				assert.Equal(t, tt.level, got.String())
			}
		})
	}
}

func TestLogger_filtersByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core), LogLevelInfo)

	logger.Error("boom %d", 1)
	logger.Warn("careful")
	logger.Info("hello %s", "world")
	logger.Debug("hidden")
	logger.Trace("hidden too")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "boom 1", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "hello world", entries[2].Message)
}

func TestLogger_traceWritesAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core), LogLevelTrace).With("connection", "abc")

	logger.Trace("tick %d", 7)

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "tick 7", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["connection"])
}

func TestNew_rejectsUnknownFormat(t *testing.T) {
	_, err := New(LogLevelInfo, "xml")
	assert.Error(t, err)
}
