// Package logging sets up the file-backed structured logger. The TUI owns
// the terminal, so nothing is written to stderr while it runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/VVic23/civics-practice/internal/store"
)

// DefaultPath returns CIVICS_LOG when set, else civics.log in the data dir.
func DefaultPath() (string, error) {
	if p := os.Getenv("CIVICS_LOG"); p != "" {
		return p, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "civics.log"), nil
}

// Open appends to the log file at path, creating it and its directory as
// needed. The returned func closes the file.
func Open(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if err := store.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f.Close, nil
}

// New builds a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug/info/warn/error to a level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
