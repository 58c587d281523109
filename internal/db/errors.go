package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Error is the single transport failure kind raised by this package. Every
// prepare, bind, execute, or scan failure is reported as *Error regardless
// of the driver in use.
type Error struct {
	Op       string // prepare, bind, query, scan
	Code     int    // driver error code; 0 when the driver exposes none
	SQLState string // five-character SQLSTATE, when the driver reports one
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the driver's message without the operation prefix.
func (e *Error) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// wrapError converts a driver error into *Error, extracting the driver's
// error code. Errors that are already *Error pass through.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}

	out := &Error{Op: op, Err: err}

	var sqliteErr sqlite3.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &sqliteErr):
		out.Code = int(sqliteErr.Code)
	case errors.As(err, &pgErr):
		out.SQLState = pgErr.Code
		out.Code = leadingInt(pgErr.Code)
	}
	return out
}

// leadingInt parses the numeric prefix of a SQLSTATE ("42P01" -> 42).
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
