package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/geocoder89/taskboard/internal/auth"
	"github.com/geocoder89/taskboard/internal/cache"
	"github.com/geocoder89/taskboard/internal/config"
	"github.com/geocoder89/taskboard/internal/db"
	"github.com/geocoder89/taskboard/internal/observability"
	"github.com/geocoder89/taskboard/internal/redisclient"
	"github.com/geocoder89/taskboard/internal/repo/memory"
	"github.com/geocoder89/taskboard/internal/repo/postgres"
	"github.com/geocoder89/taskboard/internal/repo/sqlite"
	"github.com/geocoder89/taskboard/internal/security"
	"github.com/geocoder89/taskboard/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App carries everything a request handler may need. It is built once in main
// and passed down explicitly.
type App struct {
	Cfg      config.Config
	Log      *slog.Logger
	Registry *prometheus.Registry
	Prom     *observability.Prom

	Users    *service.UserService
	Tasks    *service.TaskService
	Sessions *auth.Manager

	// Ping reports whether the store (and Redis, when configured) is reachable.
	Ping func(ctx context.Context) error

	// Draining is set once shutdown starts so /readyz stops advertising the instance.
	Draining atomic.Bool

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Cfg:      cfg,
		Log:      log,
		Registry: reg,
		Prom:     observability.NewProm(reg),
	}

	usersRepo, tasksRepo, storePing, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	revocations, redisPing := a.openRevocations()

	a.Users = service.NewUserService(usersRepo, security.NewHasher(cfg.PasswordHashIterations), a.Prom)
	a.Tasks = service.NewTaskService(tasksRepo, a.Prom)
	a.Sessions = auth.NewManager(cfg.SecretKey, cfg.SessionTTL, revocations)

	a.Ping = func(ctx context.Context) error {
		if err := storePing(ctx); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if redisPing != nil {
			if err := redisPing(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (service.UsersRepo, service.TasksRepo, func(context.Context) error, error) {
	driver, dsn, err := a.Cfg.Store()
	if err != nil {
		return nil, nil, nil, err
	}

	switch driver {
	case "postgres":
		pool, err := db.NewPool(dsn)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := db.EnsureSchema(schemaCtx, pool); err != nil {
			return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}

		a.Log.Info("store ready", "driver", driver)
		return postgres.NewUsersRepo(pool, a.Prom), postgres.NewTasksRepo(pool, a.Prom), pool.Ping, nil

	case "sqlite":
		gdb, err := db.OpenSQLite(dsn)
		if err != nil {
			return nil, nil, nil, err
		}

		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)

		if err := sqlite.Migrate(gdb); err != nil {
			return nil, nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}

		a.Log.Info("store ready", "driver", driver, "path", dsn)
		return sqlite.NewUsersRepo(gdb, a.Prom), sqlite.NewTasksRepo(gdb, a.Prom), sqlDB.PingContext, nil

	case "memory":
		store := memory.NewStore()

		a.Log.Warn("store ready", "driver", driver, "note", "data is lost on restart")
		return store.Users(), store.Tasks(), func(context.Context) error { return nil }, nil
	}

	return nil, nil, nil, fmt.Errorf("unsupported store driver %q", driver)
}

func (a *App) openRevocations() (auth.Revocations, func(context.Context) error) {
	if a.Cfg.RedisAddr == "" {
		return auth.NewMemoryRevocations(cache.New(a.Cfg.SessionTTL)), nil
	}

	rdb := redisclient.New(redisclient.Config{
		Addr:     a.Cfg.RedisAddr,
		Password: a.Cfg.RedisPassword,
		DB:       a.Cfg.RedisDB,
	})
	a.closers = append(a.closers, rdb.Close)

	a.Log.Info("session revocations in redis", "addr", a.Cfg.RedisAddr)

	return rdb, rdb.Ping
}

// Close releases the store and Redis connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
