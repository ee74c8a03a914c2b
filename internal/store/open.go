package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Config selects and configures a backend.
type Config struct {
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database_url"`
	PoolConfig  `mapstructure:",squash"`
}

// Open returns the configured Store. It does not migrate.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		s, err := NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, cfg.DatabaseURL, &cfg.PoolConfig)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
}
