package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger for the backoffice binaries.
// LOG_FORMAT=json selects the JSON handler for log shippers; anything else
// falls back to text for local runs.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
