// Package logging provides the unified logging interface for regtrace.
// It supports structured JSON logging with levels and file rotation,
// backed by zap.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ============================================================================
// Logger Interface
// ============================================================================

// Logger defines the unified logging interface
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...Field)

	// Info logs an info message
	Info(msg string, fields ...Field)

	// Warn logs a warning message
	Warn(msg string, fields ...Field)

	// Error logs an error message
	Error(msg string, fields ...Field)

	// Fatal logs a fatal message and exits
	Fatal(msg string, fields ...Field)

	// With adds fields to logger context
	With(fields ...Field) Logger

	// Sync flushes any buffered log entries
	Sync() error
}

// Field represents a structured log field
type Field = zapcore.Field

// Field constructors re-exported so callers never import zap directly

func String(key, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field         { return zap.Int(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Bool(key string, val bool) Field       { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field { return zap.Any(key, val) }
func Error(err error) Field                 { return zap.Error(err) }

// ============================================================================
// Zap Implementation
// ============================================================================

// Config defines logger construction options
type Config struct {
	// Level (debug, info, warn, error)
	Level string

	// Format (json, console)
	Format string

	// File path for rotated log output; empty logs to stdout only
	File string

	// Rotation settings
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger wraps zap.Logger to implement Logger
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a logger from the given configuration
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	return &ZapLogger{logger: logger}, nil
}

// NewNop returns a logger that discards everything; used in tests
func NewNop() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }

// Info logs an info message
func (l *ZapLogger) Info(msg string, fields ...Field) { l.logger.Info(msg, fields...) }

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, fields ...Field) { l.logger.Warn(msg, fields...) }

// Error logs an error message
func (l *ZapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }

// Fatal logs a fatal message and exits
func (l *ZapLogger) Fatal(msg string, fields ...Field) { l.logger.Fatal(msg, fields...) }

// With returns a child logger carrying the given fields
func (l *ZapLogger) With(fields ...Field) Logger {
	return &ZapLogger{logger: l.logger.With(fields...)}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error { return l.logger.Sync() }
