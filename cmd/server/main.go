// Package main is the entry point for the datamapper demo server. It serves
// user pages where every request gets its own identity-mapped mapper.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"datamapper/internal/app"
	"datamapper/internal/config"
	internaldb "datamapper/internal/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := pflag.String("env-file", ".env", "Path to a .env file loaded before the environment is read")
	addr := pflag.String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	dsn := pflag.String("dsn", "", "Database DSN (overrides DB_DSN)")
	pflag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", *envFile, err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlagOverrides(cfg, *addr, *dsn)

	logger := cfg.NewLogger()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// SQLite: single-connection write pool plus a query_only read pool.
	// Postgres: one pool for both.
	pools, err := internaldb.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBReadMaxOpen)
	if err != nil {
		return err
	}
	defer pools.Close() //nolint:errcheck

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Pools: pools, Logger: logger})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr, "driver", cfg.DBDriver, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// applyFlagOverrides lets non-empty command-line values win over the
// environment.
func applyFlagOverrides(cfg *config.Config, addr, dsn string) {
	if addr = strings.TrimSpace(addr); addr != "" {
		cfg.ListenAddr = addr
	}
	if dsn = strings.TrimSpace(dsn); dsn != "" {
		cfg.DBDSN = dsn
	}
}
