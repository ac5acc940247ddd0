package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/leontief-backend/internal/platform/blob"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type Clients struct {
	Redis *goredis.Client
	Blob  blob.Store
}

func wireClients(ctx context.Context, cfg Config, log *logger.Logger) (Clients, error) {
	var out Clients

	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr)
		out.Redis = rdb
	} else {
		log.Info("redis not configured, simulation cache disabled")
	}

	store, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		if out.Redis != nil {
			_ = out.Redis.Close()
		}
		return Clients{}, fmt.Errorf("init blob store: %w", err)
	}
	log.Info("export storage ready", "driver", string(store.Driver()))
	out.Blob = store
	return out, nil
}
