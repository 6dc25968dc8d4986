package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/config"
)

// NewLogger builds the process logger. Local runs get a console writer and
// trace level; dev and prod log JSON.
func NewLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	switch cfg.Env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel
		console := zerolog.NewConsoleWriter()
		console.TimeFormat = time.DateTime
		console.Out = os.Stdout
		w = console
	}
	if cfg.Log.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Str("env", cfg.Env).
		Logger()
}
