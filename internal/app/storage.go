package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/commerce"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/config"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository/memory"
	redisrepo "github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository/redis"
	sqliterepo "github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository/sqlite"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/database"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httpclient"
)

// Storage is the ledger store selected by CART_STORE together with whatever
// owns its connection.
type Storage struct {
	Ledgers repository.LedgerStore

	// sqlite is set when ledgers live in SQLite, which has no native expiry.
	sqlite *sqliterepo.LedgerStore
	close  func() error
}

// OpenStorage connects the configured ledger store.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.Store {
	case config.StoreRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Host = cfg.RedisHost
		redisCfg.Port = cfg.RedisPort
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", cfg.RedisDB),
		)
		return &Storage{
			Ledgers: redisrepo.NewLedgerStore(rdb, cfg.CartTTLDuration()),
			close:   rdb.Close,
		}, nil

	case config.StoreSQLite:
		store, err := sqliterepo.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger store: %w", err)
		}
		logger.Info("opened SQLite ledger store", slog.String("path", cfg.SQLitePath))
		return &Storage{Ledgers: store, sqlite: store, close: store.Close}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory ledger store; carts are lost on restart")
		return &Storage{Ledgers: memory.NewLedgerStore(), close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown ledger store %q", cfg.Store)
	}
}

// Close releases the store connection.
func (s *Storage) Close() error {
	return s.close()
}

// PurgeExpired drops SQLite ledgers untouched for longer than ttl. Other
// stores expire keys natively and report zero.
func (s *Storage) PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	if s.sqlite == nil || ttl <= 0 {
		return 0, nil
	}
	return s.sqlite.PurgeBefore(ctx, time.Now().Add(-ttl))
}

// NewCommerceClient builds the commerce API client behind retries and a
// circuit breaker.
func NewCommerceClient(cfg *config.Config, logger *slog.Logger) *commerce.Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CommerceTimeout
	httpCfg.MaxRetries = cfg.CommerceMaxRetries

	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("commerce-api"),
		logger,
	)
	return commerce.NewClient(cfg.CommerceAPIURL, breaker, logger)
}
