package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/cmd/api/infrastructure"
	"users-api/internal/adapter/cache"
	"users-api/internal/adapter/db/gormdb"
	"users-api/internal/adapter/db/memory"
	ginhandler "users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	"users-api/internal/adapter/repository/cached"
	"users-api/internal/config"
	domain "users-api/internal/domain/user"
	"users-api/internal/usecase/user"
	redisclient "users-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserRepo    user.Repository
	UserUC      *user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
	}
	// Release whatever was opened if a later step fails
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// Initialize store
	var store user.Repository
	if cfg.Store.Driver == config.DriverMemory {
		store = memory.NewUserRepo(domain.Seed(), l)
	} else {
		c.DB, err = infrastructure.NewDatabase(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store = gormdb.NewUserRepo(c.DB, l)
	}

	// Initialize Redis client, cache layer and rate limiter
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		rdb = c.RedisClient.Client

		userCache := cache.NewRedisUserCache(rdb, cfg.Redis.CacheTTLDuration(), l)
		store = cached.NewUserRepository(store, userCache, l)
	}
	c.UserRepo = store

	// Initialize use case
	c.UserUC = user.New(store, l)

	if cfg.Store.SeedOnStart {
		resp, resetErr := c.UserUC.ResetUsers(ctx)
		if resetErr != nil {
			return nil, fmt.Errorf("failed to seed users: %w", resetErr)
		}
		l.Info("users seeded", zap.Int("count", resp.Count))
	}

	c.RateLimiter = middleware.NewRateLimiter(
		rdb,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	// Initialize Gin handler
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %w", errors.Join(errs...))
	}

	return nil
}
