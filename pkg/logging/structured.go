package logging

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/openchami/macsmith/pkg/errors"
)

// StructuredLogger provides structured logging capabilities
type StructuredLogger struct {
	logger zerolog.Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(component string) *StructuredLogger {
	return &StructuredLogger{
		logger: GetLogger(component),
	}
}

// WithField adds a field to the logger
func (l *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	return &StructuredLogger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithError adds an error to the logger, including the macsmith error code
// when the error carries one
func (l *StructuredLogger) WithError(err error) *StructuredLogger {
	logger := l.logger.With().Err(err)
	if errors.IsMacSmithError(err) {
		logger = logger.Str("error_code", string(errors.GetErrorCode(err)))
	}
	return &StructuredLogger{
		logger: logger.Logger(),
	}
}

// Debug logs a debug message
func (l *StructuredLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Info logs an info message
func (l *StructuredLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Warn logs a warning message
func (l *StructuredLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Error logs an error message
func (l *StructuredLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// LogTokenOperation logs a sign or verify operation
func (l *StructuredLogger) LogTokenOperation(operation string, success bool, duration time.Duration) {
	level := l.logger.Info()
	if !success {
		level = l.logger.Warn()
	}

	level.
		Str("operation", operation).
		Bool("success", success).
		Dur("duration", duration).
		Msg("token operation")
}

// LogKeyOperation logs a key generation or keyset change
func (l *StructuredLogger) LogKeyOperation(operation, algorithm string, keysetSize int) {
	l.logger.Info().
		Str("operation", operation).
		Str("algorithm", algorithm).
		Int("keyset_size", keysetSize).
		Msg("key operation")
}
