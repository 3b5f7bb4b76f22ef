// Package logger is a thin front over log/slog shared by every layer.
// Call sites pass either key/value pairs or a bare error as the last argument.
package logger

import (
	"log/slog"
	"os"
)

var std = slog.Default()

// Init selects the handler for the environment: JSON in production, text
// elsewhere.
func Init(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	std = slog.New(handler)
	slog.SetDefault(std)
}

func Info(msg string, args ...any) {
	std.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	std.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	std.Error(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	std.Error(msg, normalize(args)...)
	os.Exit(1)
}

// normalize lets callers pass a trailing bare value (usually an error) without
// a key; it becomes the "error" attribute.
func normalize(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}

	last := args[len(args)-1]
	if _, ok := last.(slog.Attr); ok {
		return args
	}

	out := make([]any, 0, len(args)+1)
	out = append(out, args[:len(args)-1]...)
	out = append(out, slog.Any("error", last))
	return out
}
