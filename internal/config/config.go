// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Config holds the configuration of the demo server and CLI.
type Config struct {
	DBDriver      string // database/sql driver: "sqlite3" (default) or "pgx"
	DBDSN         string // SQLite file path or Postgres connection string
	DBReadMaxOpen int    // read pool size (default 4)
	ListenAddr    string // HTTP listen address (default ":8080")
	TemplateDir   string // directory of page templates served through Forward
	LogLevel      string // log level: debug, info, warn, error (default "info")
	LogFormat     string // "json" (default) or "text"
	Env           string // environment: "development" (default) or "production"
	SeedDemoData  bool   // insert demo users at startup when the table is empty
	RunMigrations bool   // apply embedded migrations at startup (default true)

	RateLimitRPS   float64 // sustained requests per second per client; 0 disables
	RateLimitBurst int     // token bucket size (default 20 when limiting)

	// CORS
	CORSAllowedOrigins []string // allowed origins; empty disables CORS handling

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by the configuration.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBDSN:         os.Getenv("DB_DSN"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		TemplateDir:   os.Getenv("TEMPLATE_DIR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		Env:           os.Getenv("ENV"),
		SeedDemoData:  parseBoolEnvDefault("SEED_DEMO_DATA", false),
		RunMigrations: parseBoolEnvDefault("RUN_MIGRATIONS", true),
	}

	if v := os.Getenv("DB_READ_MAX_OPEN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("DB_READ_MAX_OPEN must be a non-negative integer, got %q", v)
		}
		cfg.DBReadMaxOpen = n
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number, got %q", v)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", v)
		}
		cfg.RateLimitBurst = n
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite3"
	}
	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "pgx" {
		return nil, fmt.Errorf("DB_DRIVER must be \"sqlite3\" or \"pgx\", got %q", cfg.DBDriver)
	}
	if cfg.DBDSN == "" {
		if cfg.DBDriver == "pgx" {
			return nil, fmt.Errorf("DB_DSN is required when DB_DRIVER=pgx")
		}
		cfg.DBDSN = "datamapper.sqlite"
	}
	if cfg.DBReadMaxOpen == 0 {
		cfg.DBReadMaxOpen = 4
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.TemplateDir == "" {
		cfg.Warnings = append(cfg.Warnings, "TEMPLATE_DIR not set; file pages are disabled")
	}

	// Production mode: demo conveniences are fatal errors.
	if cfg.IsProduction() {
		if cfg.SeedDemoData {
			return nil, fmt.Errorf("SEED_DEMO_DATA must not be enabled in production (ENV=production)")
		}
		if slices.Contains(cfg.CORSAllowedOrigins, "*") {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
