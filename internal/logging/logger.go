package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide slog default: JSON records on stdout at
// the level named by LOG_LEVEL (debug, info, warn, error; info when unset).
// main later swaps the default for a MultiHandler once the database sink
// is available.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
