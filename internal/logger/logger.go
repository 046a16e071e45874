package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// serviceField tags every log line so aggregated logs from mixed
// deployments can be filtered down to this service.
const serviceField = "deepfake-detector"

var (
	Logger *logrus.Logger

	// base carries the default fields; all helpers fan out from it
	base *logrus.Entry
)

func init() {
	Logger = logrus.New()

	Logger.SetOutput(os.Stdout)

	// Log level from environment, defaulting to Info
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}

	// JSON formatter for structured logging
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	base = Logger.WithField("service", serviceField)
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return base.WithError(err)
}

// Info logs an info message
func Info(msg string) {
	base.Info(msg)
}

// Error logs an error message
func Error(msg string) {
	base.Error(msg)
}

// Debug logs a debug message
func Debug(msg string) {
	base.Debug(msg)
}

// Warn logs a warning message
func Warn(msg string) {
	base.Warn(msg)
}
