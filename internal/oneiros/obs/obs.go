// Package obs builds the structured logger used throughout the service.
// No third-party structured logging library converges across the
// retrieval pack (see DESIGN.md), so this one ambient concern is built
// on the standard library's log/slog.
package obs

import (
	"log/slog"
	"os"
)

// New builds a logger. format is "json" or "text"; any other value
// falls back to "text", matching the teacher's permissive defaulting
// style (unrecognized config values degrade rather than fail).
func New(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
