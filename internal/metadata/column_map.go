// Package metadata describes how an entity type maps onto a table: which
// table to select from, which columns to project, and which typed setter
// receives each column value.
package metadata

import (
	"time"

	"datamapper/internal/domain"
)

// ColumnMap binds one column name to one field setter on entity type T.
// It is stateless and reused for every row.
type ColumnMap[T any] struct {
	column string
	set    func(T, any) error
}

// ColumnName returns the column this map reads.
func (c ColumnMap[T]) ColumnName() string { return c.column }

// SetField applies value to obj. Coercion failures are reported as
// *domain.MappingError carrying the column name.
func (c ColumnMap[T]) SetField(obj T, value any) error {
	if err := c.set(obj, value); err != nil {
		return domain.ErrMapping(c.column, "%v", err)
	}
	return nil
}

// Custom builds a ColumnMap from a raw setter that receives the driver value
// unchanged.
func Custom[T any](column string, set func(obj T, value any) error) ColumnMap[T] {
	return ColumnMap[T]{column: column, set: set}
}

// String maps a non-null text column.
func String[T any](column string, set func(obj T, v string)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		s, err := AsString(value)
		if err != nil {
			return err
		}
		set(obj, s)
		return nil
	})
}

// NullString maps a nullable text column; NULL arrives as a nil pointer.
func NullString[T any](column string, set func(obj T, v *string)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		if value == nil {
			set(obj, nil)
			return nil
		}
		s, err := AsString(value)
		if err != nil {
			return err
		}
		set(obj, &s)
		return nil
	})
}

// Int64 maps a non-null integer column.
func Int64[T any](column string, set func(obj T, v int64)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		n, err := AsInt64(value)
		if err != nil {
			return err
		}
		set(obj, n)
		return nil
	})
}

// Int maps a non-null integer column onto an int field.
func Int[T any](column string, set func(obj T, v int)) ColumnMap[T] {
	return Int64(column, func(obj T, v int64) { set(obj, int(v)) })
}

// Float64 maps a non-null numeric column.
func Float64[T any](column string, set func(obj T, v float64)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		f, err := AsFloat64(value)
		if err != nil {
			return err
		}
		set(obj, f)
		return nil
	})
}

// Bool maps a non-null boolean column (0/1 in SQLite).
func Bool[T any](column string, set func(obj T, v bool)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		b, err := AsBool(value)
		if err != nil {
			return err
		}
		set(obj, b)
		return nil
	})
}

// Time maps a non-null timestamp column.
func Time[T any](column string, set func(obj T, v time.Time)) ColumnMap[T] {
	return Custom(column, func(obj T, value any) error {
		t, err := AsTime(value)
		if err != nil {
			return err
		}
		set(obj, t)
		return nil
	})
}
