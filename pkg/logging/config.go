package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// Config holds the logging configuration
type Config struct {
	Level       LogLevel  `json:"level" yaml:"level"`
	Format      LogFormat `json:"format" yaml:"format"`
	ServiceName string    `json:"service_name" yaml:"service_name"`
	Caller      bool      `json:"caller" yaml:"caller"`
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       LogLevelInfo,
		Format:      LogFormatConsole,
		ServiceName: "macsmith",
		Caller:      false,
	}
}

// Configure sets up the global logger with the given configuration
func Configure(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := zerolog.ParseLevel(string(config.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	switch config.Format {
	case LogFormatConsole:
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).With().Timestamp().Logger()
	default:
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	logger = logger.With().Str("service", config.ServiceName).Logger()
	if config.Caller {
		logger = logger.With().Caller().Logger()
	}

	log.Logger = logger
	return logger
}

// ConfigureFromEnv configures logging from environment variables
func ConfigureFromEnv() zerolog.Logger {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = LogFormat(strings.ToLower(format))
	}
	if serviceName := os.Getenv("SERVICE_NAME"); serviceName != "" {
		config.ServiceName = serviceName
	}
	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.Caller = caller == "true"
	}

	return Configure(config)
}

// GetLogger returns a logger tagged with the given component
func GetLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
