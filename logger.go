package vecdb

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vecdb-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(collection, id string, dimension int, err error) {
	if err != nil {
		l.Error("insert failed",
			"collection", collection,
			"id", id,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.Debug("insert completed",
			"collection", collection,
			"id", id,
			"dimension", dimension,
		)
	}
}

// LogQuery logs a similarity query.
func (l *Logger) LogQuery(collection string, k, resultsFound int, err error) {
	if err != nil {
		l.Error("query failed",
			"collection", collection,
			"k", k,
			"error", err,
		)
	} else {
		l.Debug("query completed",
			"collection", collection,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogSave logs a snapshot save.
func (l *Logger) LogSave(path string, collections int, err error) {
	if err != nil {
		l.Error("save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Info("snapshot saved",
			"path", path,
			"collections", collections,
		)
	}
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(path string, collections int, fresh bool) {
	if fresh {
		l.Debug("creating database store", "path", path)
		return
	}
	l.Info("database loaded",
		"path", path,
		"collections", collections,
	)
}
