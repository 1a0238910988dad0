package logger

import (
	"log/slog"
	"os"

	"kintree/internal/config"
)

// New builds the process logger: JSON records in production, text in
// development. The returned logger is also installed as slog's default.
func New(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.Server.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	logger := slog.New(handler).With(
		"service", cfg.Telemetry.ServiceName,
		"version", cfg.Telemetry.ServiceVersion,
		"environment", cfg.Server.Environment,
	)
	slog.SetDefault(logger)
	return logger
}
