// Package logger provides structured logging for gitrun on top of zap.
// Configuration comes from GITRUN_LOG_* environment variables.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the logging level.
type Level int

const (
	// DebugLevel logs everything.
	DebugLevel Level = iota
	// InfoLevel logs info, warnings, and errors.
	InfoLevel
	// ErrorLevel logs only errors.
	ErrorLevel
)

// LevelFromString converts a string to a log level.
func LevelFromString(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger wraps zap to provide the logging interface the rest of the module
// uses.
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

func init() {
	if l, err := NewFromEnv(); err == nil {
		globalLogger = l
	} else {
		globalLogger = NewNop()
	}
}

// New creates a logger with the given level. Development mode uses the
// human console encoder; otherwise output is JSON.
func New(level Level, development bool) (*Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	switch level {
	case DebugLevel:
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case ErrorLevel:
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	z, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return &Logger{zap: z, sugar: z.Sugar()}, nil
}

// NewFromEnv creates a logger configured from GITRUN_LOG_LEVEL and
// GITRUN_LOG_FORMAT.
func NewFromEnv() (*Logger, error) {
	level := LevelFromString(os.Getenv("GITRUN_LOG_LEVEL"))
	development := os.Getenv("GITRUN_LOG_FORMAT") != "json"
	return New(level, development)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Get returns the global logger instance.
func Get() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalLogger
}

// Set replaces the global logger instance.
func Set(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// WithFields returns a logger with the fields attached to every message.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	sugar := l.sugar.With(args...)
	return &Logger{zap: sugar.Desugar(), sugar: sugar}
}

// WithField returns a logger with one field attached to every message.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	sugar := l.sugar.With(key, value)
	return &Logger{zap: sugar.Desugar(), sugar: sugar}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) { l.sugar.Debug(msg) }

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string) { l.sugar.Info(msg) }

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string) { l.sugar.Warn(msg) }

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string) { l.sugar.Error(msg) }

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// WithFields logs through the global logger with the given fields.
func WithFields(fields map[string]interface{}) *Logger {
	return Get().WithFields(fields)
}

// Debugf logs a formatted debug message through the global logger.
func Debugf(format string, args ...interface{}) { Get().Debugf(format, args...) }

// Infof logs a formatted info message through the global logger.
func Infof(format string, args ...interface{}) { Get().Infof(format, args...) }

// Warnf logs a formatted warning message through the global logger.
func Warnf(format string, args ...interface{}) { Get().Warnf(format, args...) }

// Errorf logs a formatted error message through the global logger.
func Errorf(format string, args ...interface{}) { Get().Errorf(format, args...) }
