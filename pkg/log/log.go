package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogger *Logger
	lock          sync.RWMutex
)

func init() {
	logger, err := New(LogLevelDebug, FormatConsole)
	if err != nil {
		panic(fmt.Sprintf("failed to create default logger: %v", err))
	}
	defaultLogger = logger
}

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Output formats understood by New.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

func (level LogLevel) String() string {
	switch level {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	case LogLevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// zapLevel maps a LogLevel onto the closest zap level.
// zap has no trace level, trace entries are written at debug level
// and filtered by the Logger itself.
func (level LogLevel) zapLevel() zapcore.Level {
	switch level {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ParseLogLevel parses a log level string into a LogLevel.
// Valid log levels are: error, warn, info, debug, trace.
func ParseLogLevel(level string) (LogLevel, error) {
	switch level {
	case "error":
		return LogLevelError, nil
	case "warn":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	case "trace":
		return LogLevelTrace, nil
	default:
		return LogLevelError, fmt.Errorf("unknown log level: %s", level)
	}
}

// Logger is a levelled printf-style logger on top of a zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
	level LogLevel
}

// New builds a Logger writing to stdout in the given format ("json" or "console").
func New(level LogLevel, format string) (*Logger, error) {
	var cfg zap.Config
	switch format {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}

	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return FromZap(z, level), nil
}

// FromZap wraps an existing zap logger. Mostly useful for tests with zaptest or zap.NewNop.
func FromZap(z *zap.Logger, level LogLevel) *Logger {
	return &Logger{
		sugar: z.Sugar(),
		level: level,
	}
}

// With returns a child logger that attaches the given key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sugar: l.sugar.With(keysAndValues...),
		level: l.level,
	}
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	switch level {
	case LogLevelError:
		l.sugar.Errorf(format, args...)
	case LogLevelWarn:
		l.sugar.Warnf(format, args...)
	case LogLevelInfo:
		l.sugar.Infof(format, args...)
	default:
		l.sugar.Debugf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, format, args...)
}

func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, format, args...)
}

// SetDefaultLogger replaces the logger used by the package-level functions.
func SetDefaultLogger(logger *Logger) {
	lock.Lock()
	defer lock.Unlock()
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	lock.RLock()
	defer lock.RUnlock()
	return defaultLogger
}

func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

func Trace(format string, args ...interface{}) {
	Default().Trace(format, args...)
}
