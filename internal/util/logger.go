package util

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// level is shared by every logger built here so --verbose reaches them all.
var (
	level         = zap.NewAtomicLevelAt(ParseLevel(os.Getenv("HARDENAUDIT_LOG_LEVEL")))
	defaultLogger = NewLogger("hardenaudit")
)

// NewLogger builds a console logger on stderr. Stdout carries the progress
// markers and must stay clean.
func NewLogger(name string) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named(name)
}

// ParseLevel maps a level name to a zap level. Unknown names mean WARN.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// SetLogLevel changes the level of every logger from this package.
func SetLogLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// GetLogger returns the default logger
func GetLogger() *zap.Logger {
	return defaultLogger
}
