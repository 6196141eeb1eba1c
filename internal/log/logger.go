// Package log provides a small component-scoped wrapper over slog so
// every record from one subsystem carries the same "component" attr.
package log

import (
	"log/slog"
	"os"
)

type Logger struct {
	*slog.Logger
	component string
}

// New builds a text-handler logger at the given level.
func New(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), component: "app"}
}

// WithComponent returns a logger whose records are tagged with the
// component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

func (l *Logger) Component() string { return l.component }

// SetDefault installs the logger as the process default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
