package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a write/read pool pair in t.TempDir(), runs all
// pending migrations on the write pool, and registers cleanup.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")

	writeDB, readDB, err := OpenSQLitePair(path, 4)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB, DriverSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return writeDB, readDB
}

// OpenTestConnection returns a mapper connection over a migrated test
// database together with the write pool used to arrange fixtures.
func OpenTestConnection(t *testing.T) (*SQLConnection, *sql.DB) {
	t.Helper()
	writeDB, readDB := OpenTestSQLite(t)
	return NewConnection(readDB, DriverSQLite), writeDB
}
