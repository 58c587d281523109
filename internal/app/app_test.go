package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamapper/internal/config"
	internaldb "datamapper/internal/db"
)

func openPools(t *testing.T) *internaldb.Pools {
	t.Helper()
	pools, err := internaldb.Open(internaldb.DriverSQLite, filepath.Join(t.TempDir(), "app.sqlite"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pools.Close() })
	return pools
}

func TestNew_MigratesSeedsAndServes(t *testing.T) {
	pools := openPools(t)
	cfg := &config.Config{RunMigrations: true, SeedDemoData: true}

	a, err := New(context.Background(), Deps{Cfg: cfg, Pools: pools})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?min_age=70", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amazing Grace")
	assert.Contains(t, rec.Body.String(), "edsger@example.com")
	assert.NotContains(t, rec.Body.String(), "ada@example.com")

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("Location"))
}

func TestSeedUsers_Idempotent(t *testing.T) {
	pools := openPools(t)
	require.NoError(t, internaldb.RunMigrations(pools.Write, pools.Driver))
	ctx := context.Background()

	n, err := seedUsers(ctx, pools.Write, pools.Driver)
	require.NoError(t, err)
	assert.Equal(t, len(demoUsers), n)

	n, err = seedUsers(ctx, pools.Write, pools.Driver)
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int
	require.NoError(t, pools.Write.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, len(demoUsers), count)
}

func TestNew_WithoutMigrationsFailsOnFreshDatabase(t *testing.T) {
	pools := openPools(t)
	cfg := &config.Config{RunMigrations: false, SeedDemoData: true}

	_, err := New(context.Background(), Deps{Cfg: cfg, Pools: pools})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed users")
}

func TestNew_RateLimitAndRequestID(t *testing.T) {
	pools := openPools(t)
	cfg := &config.Config{RunMigrations: true, RateLimitRPS: 0.001, RateLimitBurst: 1}

	a, err := New(t.Context(), Deps{Cfg: cfg, Pools: pools})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestNew_CORS(t *testing.T) {
	pools := openPools(t)
	cfg := &config.Config{RunMigrations: true, CORSAllowedOrigins: []string{"https://ui.example"}}

	a, err := New(t.Context(), Deps{Cfg: cfg, Pools: pools})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://ui.example")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, "https://ui.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
