package metadata

import (
	"fmt"
	"strings"
)

// IDColumn is the identifier column every mapped table must expose.
const IDColumn = "id"

// DataMap aggregates the table name, the SELECT projection, the column maps
// and the blank-entity factory for entity type T.
//
// The projection always starts with IDColumn followed by the mapped columns
// in declaration order.
type DataMap[T any] struct {
	table      string
	columns    []string
	columnMaps []ColumnMap[T]
	newBlank   func() T
}

// NewDataMap builds the metadata for one entity type. newBlank must return a
// zero-valued entity; it bypasses the entity's regular constructors so that
// hydration can assign every field from row data.
//
// Invalid metadata is a programming error and panics.
func NewDataMap[T any](table string, newBlank func() T, maps ...ColumnMap[T]) *DataMap[T] {
	if strings.TrimSpace(table) == "" {
		panic("metadata: table name is required")
	}
	if newBlank == nil {
		panic(fmt.Sprintf("metadata: %s: blank entity factory is required", table))
	}

	seen := make(map[string]struct{}, len(maps))
	columns := make([]string, 0, len(maps)+1)
	columns = append(columns, IDColumn)
	for _, m := range maps {
		name := m.ColumnName()
		if name == "" {
			panic(fmt.Sprintf("metadata: %s: empty column name", table))
		}
		if name == IDColumn {
			panic(fmt.Sprintf("metadata: %s: %q is assigned by the mapper and cannot be mapped", table, IDColumn))
		}
		if _, dup := seen[name]; dup {
			panic(fmt.Sprintf("metadata: %s: duplicate column %q", table, name))
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}

	return &DataMap[T]{
		table:      table,
		columns:    columns,
		columnMaps: append([]ColumnMap[T](nil), maps...),
		newBlank:   newBlank,
	}
}

// TableName returns the mapped table.
func (d *DataMap[T]) TableName() string { return d.table }

// Columns returns a copy of the projected column names, id first.
func (d *DataMap[T]) Columns() []string {
	return append([]string(nil), d.columns...)
}

// ColumnList renders the projection for a SELECT clause.
func (d *DataMap[T]) ColumnList() string {
	return strings.Join(d.columns, ", ")
}

// ColumnMaps returns the column maps in declaration order.
func (d *DataMap[T]) ColumnMaps() []ColumnMap[T] {
	return d.columnMaps
}

// NewBlank allocates a zero-valued entity. Only the mapper should call it.
func (d *DataMap[T]) NewBlank() T {
	return d.newBlank()
}
