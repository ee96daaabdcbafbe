package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Akseler/landing/internal/calendar"
	appconfig "github.com/Akseler/landing/internal/config"
	"github.com/Akseler/landing/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPostgresPool connects when the postgres credential store is selected.
// It returns nil, nil when Postgres is not needed.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || cfg.CalendarTokenStore != appconfig.TokenStorePostgres {
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: CALENDAR_TOKEN_STORE=postgres requires DATABASE_URL")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// BuildCredentialStore selects the credential backend. A nil pool always
// yields the file store.
func BuildCredentialStore(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) calendar.CredentialStore {
	if logger == nil {
		logger = logging.Default()
	}
	if pool != nil {
		logger.Info("calendar credentials stored in postgres")
		return calendar.NewPostgresCredentialStore(pool)
	}
	logger.Info("calendar credentials stored on disk", "path", cfg.CalendarTokenFile)
	return calendar.NewFileCredentialStore(cfg.CalendarTokenFile)
}

// BuildStateStore keeps OAuth states in Redis when available.
func BuildStateStore(redisClient *redis.Client) calendar.StateStore {
	if redisClient == nil {
		return calendar.NewMemoryStateStore()
	}
	return calendar.NewRedisStateStore(redisClient)
}
