// Package db is the connection boundary of the mapper layer: it opens
// database pools, runs the demo schema migrations, and exposes the
// Connection/Statement/RecordSet contract the mapper executes against.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters applied to every pool.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// Mode selects how a SQLite pool is configured.
type Mode string

const (
	// ModeWrite opens a single-connection pool with immediate transactions.
	// Migrations and seeding run on it.
	ModeWrite Mode = "write"
	// ModeRead opens a multi-connection pool with query_only set, so every
	// mapper round trip is guaranteed to be side-effect free.
	ModeRead Mode = "read"
)

// OpenSQLite opens a *sql.DB pool for the given SQLite file path.
//
//   - ModeWrite: MaxOpenConns=1, _txlock=immediate
//   - ModeRead:  MaxOpenConns=maxOpen (0 means 4), _query_only=true
//
// Both modes set WAL journal, busy_timeout=5000ms, synchronous=NORMAL,
// and foreign_keys=on.
func OpenSQLite(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", mode, ModeRead, ModeWrite)
	}

	db, err := sql.Open(DriverSQLite, buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	switch mode {
	case ModeWrite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case ModeRead:
		if maxOpen <= 0 {
			maxOpen = 4
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}

	return db, nil
}

// OpenSQLitePair opens a write pool and a read pool for the same SQLite
// file. The write pool is opened first so that the file exists in WAL mode
// before readers attach.
func OpenSQLitePair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = OpenSQLite(path, ModeWrite, 0)
	if err != nil {
		return nil, nil, err
	}

	readDB, err = OpenSQLite(path, ModeRead, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_foreign_keys", "on")

	switch mode {
	case ModeWrite:
		params.Set("_txlock", "immediate")
	case ModeRead:
		params.Set("_query_only", "true")
	}

	return path + "?" + params.Encode()
}
