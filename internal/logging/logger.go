// Package logging defines the structured-logging interface used across the
// client, with implementations over log/slog and zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "profile fetched", "user", username, "brand", brandID)
type Logger interface {
	// Debug logs request-level detail useful while diagnosing the client.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported values for the log_format setting.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatZerolog = "zerolog"
)

// New builds a Logger writing to w. format is one of FormatText, FormatJSON
// (both slog) or FormatZerolog; level is debug, info, warn or error.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		lvl, err := slogLevel(level)
		if err != nil {
			return nil, err
		}
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))), nil
	case FormatJSON:
		lvl, err := slogLevel(level)
		if err != nil {
			return nil, err
		}
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))), nil
	case FormatZerolog:
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		return NewZerologLogger(zerolog.New(w).Level(lvl).With().Timestamp().Logger()), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func slogLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
