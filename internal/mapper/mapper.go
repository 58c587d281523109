// Package mapper implements a data mapper with an embedded identity map.
//
// A Mapper[T] turns rows returned by a db.Connection into entities of type
// T. Within one Mapper every persisted id resolves to exactly one instance:
// the first hydration wins and later rows for the same id are ignored, so a
// cached entity never reflects changes made to its row afterwards. Build one
// Mapper per unit of work (an HTTP request, a CLI invocation) and call Reset
// when fresh state is required.
//
// A Mapper is not safe for concurrent use.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"datamapper/internal/db"
	"datamapper/internal/domain"
	"datamapper/internal/metadata"
)

// Loader supplies the per-entity pieces a Mapper cannot derive itself.
type Loader[T domain.Object] interface {
	// FindStatement returns the SQL used by Find. It takes exactly one
	// positional parameter, the id.
	FindStatement() string
	// LoadDataMap builds the entity metadata. It is called at most once
	// per Mapper.
	LoadDataMap() *metadata.DataMap[T]
}

// Mapper is the engine shared by concrete mappers.
type Mapper[T domain.Object] struct {
	db      db.Connection
	loader  Loader[T]
	dataMap *metadata.DataMap[T]
	loaded  map[int64]T
	logger  *slog.Logger
}

// New creates a Mapper with an empty identity map. A nil logger discards
// output.
func New[T domain.Object](conn db.Connection, loader Loader[T], logger *slog.Logger) *Mapper[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper[T]{
		db:     conn,
		loader: loader,
		loaded: make(map[int64]T),
		logger: logger.With("mapper_session", domain.NewSessionID()),
	}
}

// DataMap returns the entity metadata, loading it on first use.
func (m *Mapper[T]) DataMap() *metadata.DataMap[T] {
	if m.dataMap == nil {
		m.dataMap = m.loader.LoadDataMap()
	}
	return m.dataMap
}

// Find returns the entity with the given id. A cached entity is returned
// without touching the connection. A missing row yields
// *domain.NotFoundError; connection failures yield *domain.StorageError.
func (m *Mapper[T]) Find(ctx context.Context, id int64) (T, error) {
	var zero T
	if obj, ok := m.loaded[id]; ok {
		m.logger.DebugContext(ctx, "identity map hit", "id", id)
		return obj, nil
	}

	query := m.loader.FindStatement()
	stmt, err := m.db.Prepare(ctx, query)
	if err != nil {
		return zero, translate(err)
	}
	defer stmt.Close() //nolint:errcheck

	stmt.BindValue(1, id)
	m.logger.DebugContext(ctx, "executing find", "sql", query, "id", id)
	rs, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return zero, translate(err)
	}

	row, ok := rs.Current()
	if !ok {
		return zero, domain.ErrNotFound("%s with id %d not found", m.DataMap().TableName(), id)
	}
	return m.Load(row)
}

// FindObjectsWhere selects every row of the mapped table matching where and
// returns the entities in result order. where is raw SQL and must never be
// built from untrusted input; pass untrusted values through binds, which are
// bound positionally to '?' placeholders.
func (m *Mapper[T]) FindObjectsWhere(ctx context.Context, where string, binds ...any) ([]T, error) {
	if strings.TrimSpace(where) == "" {
		return nil, domain.ErrValidation("where clause is required")
	}

	dm := m.DataMap()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", dm.ColumnList(), dm.TableName(), where)

	stmt, err := m.db.Prepare(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer stmt.Close() //nolint:errcheck

	m.logger.DebugContext(ctx, "executing select", "sql", query, "binds", len(binds))
	rs, err := stmt.ExecuteQuery(ctx, binds...)
	if err != nil {
		return nil, translate(err)
	}
	return m.LoadAll(rs)
}

// FindMany executes a prebuilt statement and returns the entities in result
// order. The statement must project every mapped column plus id.
func (m *Mapper[T]) FindMany(ctx context.Context, source StatementSource) ([]T, error) {
	stmt, err := m.db.Prepare(ctx, source.SQL())
	if err != nil {
		return nil, translate(err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, p := range source.Parameters() {
		if p.Name != "" {
			stmt.BindNamed(p.Name, p.Value)
		} else {
			stmt.BindValue(p.Position, p.Value)
		}
	}

	m.logger.DebugContext(ctx, "executing statement source", "sql", source.SQL(), "params", len(source.Parameters()))
	rs, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return m.LoadAll(rs)
}

// Load hydrates one row. If an entity with the row's id is already cached
// the cached instance is returned and the row's values are ignored.
// A row lacking the id or a mapped column yields *domain.MappingError and
// nothing is cached.
func (m *Mapper[T]) Load(row db.Row) (T, error) {
	var zero T
	dm := m.DataMap()

	raw, ok := row.Get(metadata.IDColumn)
	if !ok {
		return zero, &domain.MappingError{Table: dm.TableName(), Column: metadata.IDColumn, Message: "column missing from row"}
	}
	id, err := metadata.AsInt64(raw)
	if err != nil {
		return zero, &domain.MappingError{Table: dm.TableName(), Column: metadata.IDColumn, Message: err.Error()}
	}

	if obj, ok := m.loaded[id]; ok {
		return obj, nil
	}

	obj := dm.NewBlank()
	obj.SetID(id)
	if err := m.loadFields(dm, row, obj); err != nil {
		return zero, err
	}
	m.loaded[id] = obj
	return obj, nil
}

// LoadAll hydrates every row of rs in order. The first failing row aborts
// the call.
func (m *Mapper[T]) LoadAll(rs *db.RecordSet) ([]T, error) {
	out := make([]T, 0, rs.Len())
	for row := range rs.All() {
		obj, err := m.Load(row)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (m *Mapper[T]) loadFields(dm *metadata.DataMap[T], row db.Row, obj T) error {
	for _, cm := range dm.ColumnMaps() {
		value, ok := row.Get(cm.ColumnName())
		if !ok {
			return &domain.MappingError{
				Table:   dm.TableName(),
				Column:  cm.ColumnName(),
				Message: "column missing from row; the query projection does not cover the data map",
			}
		}
		if err := cm.SetField(obj, value); err != nil {
			var mapErr *domain.MappingError
			if errors.As(err, &mapErr) {
				mapErr.Table = dm.TableName()
			}
			return err
		}
	}
	return nil
}

// Cached returns the cached entity for id without querying.
func (m *Mapper[T]) Cached(id int64) (T, bool) {
	obj, ok := m.loaded[id]
	return obj, ok
}

// Len returns the number of cached entities.
func (m *Mapper[T]) Len() int { return len(m.loaded) }

// Reset empties the identity map. Entities handed out earlier stay valid
// but are no longer shared with later finds.
func (m *Mapper[T]) Reset() {
	clear(m.loaded)
}

// translate converts a connection failure into the storage error surfaced
// by every finder.
func translate(err error) error {
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return &domain.StorageError{Message: dbErr.Message(), Code: dbErr.Code, Err: err}
	}
	return &domain.StorageError{Message: err.Error(), Err: err}
}
