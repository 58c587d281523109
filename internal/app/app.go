// Package app wires the database pools, migrations, demo data and HTTP
// router of the datamapper server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"datamapper/internal/config"
	internaldb "datamapper/internal/db"
	"datamapper/internal/middleware"
	"datamapper/internal/web"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Pools  *internaldb.Pools
	Logger *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Conn    *internaldb.SQLConnection
	Handler *web.Handler
	Router  http.Handler
}

// New prepares the schema, seeds demo data when enabled and builds the
// router. Mappers are created per request by the web handler.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.RunMigrations {
		if err := internaldb.RunMigrations(deps.Pools.Write, deps.Pools.Driver); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	if cfg.SeedDemoData {
		n, err := seedUsers(ctx, deps.Pools.Write, deps.Pools.Driver)
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		if n > 0 {
			logger.Info("seeded demo users", "count", n)
		}
	}

	conn := deps.Pools.Connection()
	handler := web.NewHandler(
		conn,
		web.NewForward(cfg.TemplateDir, logger.With("component", "forward")),
		logger.With("component", "web"),
	)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
			AllowedHeaders: []string{"Accept", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusFound)
	})
	web.MountRoutes(r, handler)

	return &App{Conn: conn, Handler: handler, Router: r}, nil
}
