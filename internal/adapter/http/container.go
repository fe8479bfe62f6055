package http

import (
	"context"
	"fmt"
	"time"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/cache/memory"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/cache/redis"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/postgres"
	pgrepository "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/postgres/repository"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite"
	sqliterepository "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite/repository"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/handler"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/validation"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/service"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/auth"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

type Container struct {
	UserRepo port.UserRepository
	TodoRepo port.TodoRepository
	Cache    port.Cache
	Tokens   port.TokenIssuer

	UserUseCase   port.UserService
	TodoUseCase   port.TodoService
	AuthUseCase   port.AuthService
	HealthUseCase port.HealthService

	UserHandler   *handler.UserHandler
	TodoHandler   *handler.TodoHandler
	AuthHandler   *handler.AuthHandler
	HealthHandler *handler.HealthHandler

	closers []func() error
}

// NewContainer opens the configured store and cache and wires every layer on top.
func NewContainer(ctx context.Context, cfg config.Config, probe port.Telemetry, logger *config.Logger) (*Container, error) {
	c := &Container{}

	if err := c.openStore(ctx, cfg, probe); err != nil {
		return nil, err
	}

	if err := c.openCache(ctx, cfg.Cache); err != nil {
		c.Close()
		return nil, err
	}

	zl := logger.Logger.Logger
	validator := validation.New()

	c.Tokens = auth.NewJWT(cfg.Auth.Secret, cfg.Auth.AccessTTL.Duration(), cfg.Auth.RefreshTTL.Duration())

	userSvc := service.NewUserService(c.UserRepo, zl)
	c.UserUseCase = userSvc
	c.AuthUseCase = service.NewAuthService(userSvc, c.Tokens, zl)
	c.TodoUseCase = service.NewTodoService(c.TodoRepo, c.Cache, probe, zl)
	c.HealthUseCase = service.NewHealthService(cfg.App.Version, map[string]port.Pinger{
		"database": c.TodoRepo,
		"cache":    c.Cache,
	}, zl)

	c.AuthHandler = handler.NewAuthHandler(c.AuthUseCase, validator, logger)
	c.UserHandler = handler.NewUserHandler(c.UserUseCase, validator, logger)
	c.TodoHandler = handler.NewTodoHandler(c.TodoUseCase, validator, logger)
	c.HealthHandler = handler.NewHealthHandler(c.HealthUseCase)

	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg config.Config, probe port.Telemetry) error {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}

		c.UserRepo = pgrepository.NewUserRepository(db, probe)
		c.TodoRepo = pgrepository.NewTodoRepository(db, probe)
		c.closers = append(c.closers, func() error { db.Close(); return nil })
	default:
		db, err := sqlite.New(cfg.Database, cfg.App)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}

		c.UserRepo = sqliterepository.NewUserRepository(db, probe)
		c.TodoRepo = sqliterepository.NewTodoRepository(db, probe)
		c.closers = append(c.closers, db.Close)
	}

	return nil
}

func (c *Container) openCache(ctx context.Context, cfg config.CacheConfig) error {
	switch cfg.Driver {
	case "redis":
		cache, err := redis.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}

		c.Cache = cache
	default:
		c.Cache = memory.New(time.Minute)
	}

	c.closers = append(c.closers, c.Cache.Close)

	return nil
}

// Close releases the cache and the store in reverse opening order.
func (c *Container) Close() error {
	var first error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}

	c.closers = nil

	return first
}
