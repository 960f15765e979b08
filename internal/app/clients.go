package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/todo-backend/internal/data/db"
	"github.com/yungbote/todo-backend/internal/observability"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type Clients struct {
	DB      *db.Service
	Redis   *goredis.Client
	Metrics *observability.Metrics
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Database
	store, err := db.Open(cfg.DB, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		return Clients{}, fmt.Errorf("database automigrate: %w", err)
	}

	// Redis (optional; the todo cache is off without it)
	var rdb *goredis.Client
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			_ = store.Close()
			return Clients{}, fmt.Errorf("init redis %s: %w", addr, err)
		}
		log.Info("redis connected", "addr", addr)
	}

	return Clients{
		DB:      store,
		Redis:   rdb,
		Metrics: observability.Init(log),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// redisPinger adapts the redis client to the readiness probe.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
