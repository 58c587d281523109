package db

import "iter"

// Row is one result row keyed by column name.
type Row map[string]any

// Get returns the value for column and whether the column was projected.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// RecordSet is a finite, fully materialized result. It offers a forward
// cursor (Current/Next) and can be copied out as an ordered slice.
type RecordSet struct {
	rows []Row
	pos  int
}

// NewRecordSet builds a RecordSet over rows, positioned on the first row.
func NewRecordSet(rows ...Row) *RecordSet {
	return &RecordSet{rows: rows}
}

// Current returns the row under the cursor. ok is false when the result is
// empty or the cursor has moved past the last row.
func (rs *RecordSet) Current() (row Row, ok bool) {
	if rs.pos >= len(rs.rows) {
		return nil, false
	}
	return rs.rows[rs.pos], true
}

// Next advances the cursor and reports whether it rests on a row.
func (rs *RecordSet) Next() bool {
	if rs.pos < len(rs.rows) {
		rs.pos++
	}
	return rs.pos < len(rs.rows)
}

// Rewind moves the cursor back to the first row.
func (rs *RecordSet) Rewind() { rs.pos = 0 }

// Len returns the number of rows.
func (rs *RecordSet) Len() int { return len(rs.rows) }

// Rows returns the rows in result order. The slice is a copy; the row maps
// are shared.
func (rs *RecordSet) Rows() []Row {
	return append([]Row(nil), rs.rows...)
}

// All iterates every row in result order, independent of the cursor.
func (rs *RecordSet) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, row := range rs.rows {
			if !yield(row) {
				return
			}
		}
	}
}
