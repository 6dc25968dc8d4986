package docstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"teamtasks/internal/config"
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (Store, error) {
	log = log.With().Str("component", "docstore").Str("driver", cfg.Driver).Logger()

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "memory":
		s = NewMemory()
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DSN)
	case "sqlite":
		s, err = NewSQLite(cfg.DSN, log)
	case "mongo":
		s, err = NewMongo(ctx, cfg.DSN, cfg.Name)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Msg("document store opened")
	return s, nil
}
