package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/persistence"
)

// Open builds the store selected by STORE_DRIVER. keyPrefix namespaces the
// Redis keys of one bot.
func Open(ctx context.Context, cfg *config.Config, keyPrefix string, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StoreDriverFile:
		return NewFileStore(cfg.Storage.DataDir, logger)
	case config.StoreDriverPostgres:
		db, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return NewPostgresStore(db), nil
	case config.StoreDriverRedis:
		db, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return NewRedisStore(db, keyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Storage.Driver)
	}
}
