package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Supported database/sql driver names. The drivers themselves are
// registered by blank imports in the binaries.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Pools holds the database handles used by the application. For SQLite
// Write and Read are distinct pools on the same file; for Postgres both
// point at the same pool.
type Pools struct {
	Driver string
	Write  *sql.DB
	Read   *sql.DB
}

// Open opens the pools for driver and dsn. For SQLite the dsn is a file path.
func Open(driver, dsn string, readMaxOpen int) (*Pools, error) {
	switch driver {
	case DriverSQLite:
		w, r, err := OpenSQLitePair(dsn, readMaxOpen)
		if err != nil {
			return nil, err
		}
		return &Pools{Driver: driver, Write: w, Read: r}, nil
	case DriverPostgres:
		pool, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if readMaxOpen > 0 {
			pool.SetMaxOpenConns(readMaxOpen)
		}
		pool.SetConnMaxLifetime(time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pool.PingContext(ctx); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Pools{Driver: driver, Write: pool, Read: pool}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q: must be %q or %q", driver, DriverSQLite, DriverPostgres)
	}
}

// Connection returns a mapper connection over the read pool.
func (p *Pools) Connection() *SQLConnection {
	return NewConnection(p.Read, p.Driver)
}

// Close closes every distinct pool.
func (p *Pools) Close() error {
	var firstErr error
	if p.Read != nil && p.Read != p.Write {
		firstErr = p.Read.Close()
	}
	if p.Write != nil {
		if err := p.Write.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
