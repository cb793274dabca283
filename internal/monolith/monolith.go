// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/di"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	RateLimits() *ratelimit.Registry
	// Redis is nil when the redis tier is disabled.
	Redis() *redis.Client
	// DB is nil when postgres is disabled.
	DB() *pgxpool.Pool
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	rateLimits    *ratelimit.Registry
	redis         *redis.Client
	db            *pgxpool.Pool
	container     di.Container
}

// New creates a new Monolith instance. Optional stores are connected when enabled;
// a store that cannot be reached is logged and left disabled.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	assetRegistry := asset.DefaultRegistry()

	a := &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		rateLimits:    ratelimit.NewRegistry(cfg.Identity.Lookup.RateLimits, 60),
		container:     di.NewContainer(),
	}

	if cfg.Redis.Enabled {
		a.redis = connectRedis(ctx, cfg.Redis, log)
	}
	if cfg.Postgres.Enabled {
		a.db = connectPostgres(ctx, cfg.Postgres, log)
	}

	// Register global services
	a.container.Register("config", cfg)
	a.container.Register("logger", log)
	a.container.Register("assetRegistry", assetRegistry)
	a.container.Register("rateLimits", a.rateLimits)
	if a.redis != nil {
		a.container.Register("redis", a.redis)
	}
	if a.db != nil {
		a.container.Register("db", a.db)
	}

	return a, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log logger.LoggerInterface) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn(ctx, "redis unavailable, continuing without shared cache", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	log.Info(ctx, "redis connected", "addr", cfg.Addr)
	return client
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig, log logger.LoggerInterface) *pgxpool.Pool {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		log.Warn(ctx, "invalid postgres dsn, continuing without registry", "error", err)
		return nil
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, poolCfg)
	if err == nil {
		err = pool.Ping(pingCtx)
	}
	if err != nil {
		log.Warn(ctx, "postgres unavailable, continuing without registry", "error", err)
		if pool != nil {
			pool.Close()
		}
		return nil
	}
	log.Info(ctx, "postgres connected")
	return pool
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) RateLimits() *ratelimit.Registry {
	return a.rateLimits
}

func (a *app) Redis() *redis.Client {
	return a.redis
}

func (a *app) DB() *pgxpool.Pool {
	return a.db
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}
