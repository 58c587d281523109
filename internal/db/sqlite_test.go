package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN_Write(t *testing.T) {
	dsn := buildDSN("/tmp/test.sqlite", ModeWrite)

	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_synchronous=NORMAL")
	assert.Contains(t, dsn, "_foreign_keys=on")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.NotContains(t, dsn, "_query_only")
	assert.True(t, strings.HasPrefix(dsn, "/tmp/test.sqlite?"))
}

func TestBuildDSN_Read(t *testing.T) {
	dsn := buildDSN("/tmp/test.sqlite", ModeRead)

	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_query_only=true")
	assert.NotContains(t, dsn, "_txlock")
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), Mode("invalid"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLite_Write(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), ModeWrite, 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpenSQLite_ReadDefaultMaxOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	wdb, err := OpenSQLite(path, ModeWrite, 0)
	require.NoError(t, err)
	wdb.Close()

	db, err := OpenSQLite(path, ModeRead, 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}

func TestOpenSQLitePair_ReadPoolRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	writeDB, readDB, err := OpenSQLitePair(path, 2)
	require.NoError(t, err)
	t.Cleanup(func() {
		writeDB.Close()
		readDB.Close()
	})

	_, err = writeDB.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)")
	require.NoError(t, err)
	_, err = writeDB.Exec("INSERT INTO test (val) VALUES ('hello')")
	require.NoError(t, err)

	var val string
	require.NoError(t, readDB.QueryRow("SELECT val FROM test WHERE id = 1").Scan(&val))
	assert.Equal(t, "hello", val)

	_, err = readDB.Exec("INSERT INTO test (val) VALUES ('nope')")
	require.Error(t, err)
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/test.db", ModeWrite, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpen_SQLite(t *testing.T) {
	pools, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "app.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { pools.Close() })

	assert.NotSame(t, pools.Write, pools.Read)
	require.NoError(t, RunMigrations(pools.Write, pools.Driver))
	assert.NotNil(t, pools.Connection())
}

func TestRunMigrations_CreatesUsersTable(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)

	var name string
	err := writeDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	// Idempotent.
	require.NoError(t, RunMigrations(writeDB, DriverSQLite))
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)
	err := RunMigrations(writeDB, "mysql")
	require.Error(t, err)
}
