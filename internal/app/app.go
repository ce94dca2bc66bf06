// Package app assembles the server: it opens the database, builds the
// stores, handlers and middleware and owns their lifetimes.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/middleware"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/router"
	"github.com/iliyamo/fyyur/internal/service"
	"github.com/iliyamo/fyyur/internal/view"
)

// App is the running server and everything it owns.
type App struct {
	Config config.Config
	DB     *sql.DB
	Redis  *redis.Client // nil when rate limiting runs without Redis
	Echo   *echo.Echo
}

// New connects to MySQL (and Redis when reachable), applies the schema
// when enabled and builds the HTTP stack.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	rl := config.LoadRateLimitConfig()
	var rdb *redis.Client
	if rl.Enabled {
		if rdb = config.NewRedisClient(ctx); rdb == nil {
			slog.WarnContext(ctx, "Redis unreachable; rate limiting disabled")
		}
	}

	policy := repository.RestrictDeletes
	if cfg.DeletePolicy == config.DeleteCascade {
		policy = repository.CascadeDeletes
	}
	var events handler.EventPublisher
	if p := service.NewListingPublisher(cfg.AMQPURL); p != nil {
		events = p
	}
	fl := flash.NewManager(cfg.SecretKey, cfg.Env == "prod")
	h := handler.NewHandler(
		repository.NewVenueRepo(db, policy),
		repository.NewArtistRepo(db, policy),
		repository.NewShowRepo(db),
		events,
		fl,
	)
	e, err := NewEcho(h, db, middleware.NewTokenBucket(rl, rdb))
	if err != nil {
		_ = db.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	return &App{Config: cfg, DB: db, Redis: rdb, Echo: e}, nil
}

// NewEcho builds the echo instance with renderer, middleware and routes.
func NewEcho(h *handler.Handler, db handler.Pinger, limit echo.MiddlewareFunc) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(h.Flash)
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(h.Flash.Middleware())
	router.RegisterAll(e, h, db, limit)
	return e, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Echo,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Listening", "addr", srv.Addr, "env", a.Config.Env)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
