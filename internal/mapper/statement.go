package mapper

import "sort"

// Param is one bind parameter of a StatementSource. Exactly one of Position
// (1-based) or Name is set.
type Param struct {
	Position int
	Name     string
	Value    any
}

// StatementSource is an immutable parameterized query. The With* methods
// return modified copies.
type StatementSource struct {
	sql    string
	params []Param
}

// NewStatementSource binds values to positions 1..n.
func NewStatementSource(sql string, values ...any) StatementSource {
	params := make([]Param, len(values))
	for i, v := range values {
		params[i] = Param{Position: i + 1, Value: v}
	}
	return StatementSource{sql: sql, params: params}
}

// NewNamedStatementSource binds named values. Parameters are ordered by name.
func NewNamedStatementSource(sql string, values map[string]any) StatementSource {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, len(names))
	for i, name := range names {
		params[i] = Param{Name: name, Value: values[name]}
	}
	return StatementSource{sql: sql, params: params}
}

// SQL returns the query text.
func (s StatementSource) SQL() string { return s.sql }

// Parameters returns a copy of the bind parameters.
func (s StatementSource) Parameters() []Param {
	return append([]Param(nil), s.params...)
}

// WithParam returns a copy with value bound to the next free position.
func (s StatementSource) WithParam(value any) StatementSource {
	next := 1
	for _, p := range s.params {
		if p.Name == "" && p.Position >= next {
			next = p.Position + 1
		}
	}
	return s.with(Param{Position: next, Value: value})
}

// WithNamed returns a copy with value bound to name, replacing any earlier
// value for the same name.
func (s StatementSource) WithNamed(name string, value any) StatementSource {
	out := StatementSource{sql: s.sql, params: make([]Param, 0, len(s.params)+1)}
	for _, p := range s.params {
		if p.Name != name || name == "" {
			out.params = append(out.params, p)
		}
	}
	out.params = append(out.params, Param{Name: name, Value: value})
	return out
}

func (s StatementSource) with(p Param) StatementSource {
	params := make([]Param, len(s.params), len(s.params)+1)
	copy(params, s.params)
	return StatementSource{sql: s.sql, params: append(params, p)}
}
