// Package logger carries a structured logrus logger through context so every
// component logs with the fields (skill id, task id, session id) its caller
// attached.
package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// L is the fallback entry used when a context carries no logger.
var L = logrus.NewEntry(newLogger())

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return log
}

// WithLogger returns a context carrying the given entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// G extracts the logger from ctx, falling back to the package default.
func G(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L
}

// SetLevel adjusts the default logger's level from a string such as "debug".
// Unknown names leave the level unchanged.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		L.WithField("level", level).Warn("unknown log level, keeping current")
		return
	}
	L.Logger.SetLevel(parsed)
}
