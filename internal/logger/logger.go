package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with component-scoped helpers
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance writing JSON to stdout
func New(level string) *Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput creates a logger writing to out
func NewWithOutput(level string, out io.Writer) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	return &Logger{Logger: log}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithOutput("panic", io.Discard)
}

// WithComponent creates a new logger entry with component name field
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// Collaborator logs a text-generation call outcome
func (l *Logger) Collaborator(task string, fallback bool, err error) {
	entry := l.Logger.WithFields(logrus.Fields{
		"component": "genai",
		"task":      task,
		"fallback":  fallback,
	})
	if err != nil {
		entry = entry.WithError(err)
	}

	if fallback {
		entry.Warn("Collaborator call degraded to fallback payload")
	} else {
		entry.Debug("Collaborator call completed")
	}
}

// Storage logs a local store event for a collection key
func (l *Logger) Storage(operation, key string, err error) {
	entry := l.Logger.WithFields(logrus.Fields{
		"component": "store",
		"operation": operation,
		"key":       key,
	})
	if err != nil {
		entry.WithError(err).Warn("Storage operation failed")
		return
	}
	entry.Debug("Storage operation completed")
}
