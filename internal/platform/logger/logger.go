package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so the log
// collector can index the request ids and masked identifiers we attach.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
