package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Connection prepares SQL text for execution.
type Connection interface {
	Prepare(ctx context.Context, query string) (Statement, error)
}

// Statement is a prepared query with bind slots. Positions are 1-based.
// A Statement must be closed after use.
type Statement interface {
	BindValue(position int, value any)
	BindNamed(name string, value any)
	// ExecuteQuery runs the statement and materializes the full result.
	// When params are given they replace any values bound earlier and are
	// applied positionally.
	ExecuteQuery(ctx context.Context, params ...any) (*RecordSet, error)
	Close() error
}

// SQLConnection implements Connection over a database/sql pool. Queries are
// written with '?' placeholders and rebound to the driver's bind style.
type SQLConnection struct {
	db *sqlx.DB
}

var _ Connection = (*SQLConnection)(nil)

// NewConnection wraps pool for driverName.
func NewConnection(pool *sql.DB, driverName string) *SQLConnection {
	return &SQLConnection{db: sqlx.NewDb(pool, driverName)}
}

// Prepare rebinds query for the driver and prepares it.
func (c *SQLConnection) Prepare(ctx context.Context, query string) (Statement, error) {
	stmt, err := c.db.PreparexContext(ctx, c.db.Rebind(query))
	if err != nil {
		return nil, wrapError("prepare", err)
	}
	return &sqlStatement{
		stmt:       stmt,
		positional: map[int]any{},
		named:      map[string]any{},
	}, nil
}

type sqlStatement struct {
	stmt       *sqlx.Stmt
	positional map[int]any
	named      map[string]any
	bindErr    error
}

func (s *sqlStatement) BindValue(position int, value any) {
	if position < 1 {
		if s.bindErr == nil {
			s.bindErr = fmt.Errorf("bind position %d out of range: positions start at 1", position)
		}
		return
	}
	s.positional[position] = value
}

func (s *sqlStatement) BindNamed(name string, value any) {
	if name == "" {
		if s.bindErr == nil {
			s.bindErr = fmt.Errorf("bind name must not be empty")
		}
		return
	}
	s.named[name] = value
}

func (s *sqlStatement) ExecuteQuery(ctx context.Context, params ...any) (*RecordSet, error) {
	args := params
	if len(args) == 0 {
		var err error
		if args, err = s.boundArgs(); err != nil {
			return nil, wrapError("bind", err)
		}
	}

	rows, err := s.stmt.QueryxContext(ctx, args...)
	if err != nil {
		return nil, wrapError("query", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row := make(Row)
		if err := rows.MapScan(row); err != nil {
			return nil, wrapError("scan", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("scan", err)
	}
	return NewRecordSet(out...), nil
}

// boundArgs orders positional values 1..n and appends named values sorted
// by name. Gaps in the positional sequence are an error.
func (s *sqlStatement) boundArgs() ([]any, error) {
	if s.bindErr != nil {
		return nil, s.bindErr
	}

	args := make([]any, 0, len(s.positional)+len(s.named))
	for i := 1; i <= len(s.positional); i++ {
		v, ok := s.positional[i]
		if !ok {
			return nil, fmt.Errorf("no value bound for position %d", i)
		}
		args = append(args, v)
	}

	names := make([]string, 0, len(s.named))
	for name := range s.named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, sql.Named(name, s.named[name]))
	}
	return args, nil
}

func (s *sqlStatement) Close() error {
	return s.stmt.Close()
}
