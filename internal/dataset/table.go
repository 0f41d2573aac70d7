// Package dataset holds the column-aligned tables produced by the commands
// and their flat-file serialization.
//
// A Table is built once from a full set of columns and never changes after
// that: accessors hand out copies. Every column has the same number of
// samples, and column order is the order the columns were supplied in.
package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColumns is returned when a table would have no columns.
	ErrNoColumns = errors.New("dataset: table needs at least one column")
	// ErrColumnLength is returned when columns disagree on sample count.
	ErrColumnLength = errors.New("dataset: column length mismatch")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("dataset: duplicate column")
	// ErrEmptyColumnName is returned for a column without a name.
	ErrEmptyColumnName = errors.New("dataset: empty column name")
)

// Value is the set of cell types a table can hold.
type Value interface {
	float64 | int
}

// Column is one named sequence of samples.
type Column[T Value] struct {
	Name   string
	Values []T
}

// Table is an immutable set of equal-length named columns.
type Table[T Value] struct {
	columns []Column[T]
	rows    int
}

// New builds a table from columns, copying their values.
func New[T Value](columns ...Column[T]) (Table[T], error) {
	if len(columns) == 0 {
		return Table[T]{}, ErrNoColumns
	}
	rows := len(columns[0].Values)
	seen := make(map[string]struct{}, len(columns))
	copied := make([]Column[T], len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return Table[T]{}, fmt.Errorf("%w at position %d", ErrEmptyColumnName, i)
		}
		if _, dup := seen[col.Name]; dup {
			return Table[T]{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = struct{}{}
		if len(col.Values) != rows {
			return Table[T]{}, fmt.Errorf("%w: %s has %d values, want %d", ErrColumnLength, col.Name, len(col.Values), rows)
		}
		copied[i] = Column[T]{Name: col.Name, Values: append([]T(nil), col.Values...)}
	}
	return Table[T]{columns: copied, rows: rows}, nil
}

// Names returns the column names in order.
func (t Table[T]) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns a copy of the named column's values.
func (t Table[T]) Column(name string) ([]T, bool) {
	for _, col := range t.columns {
		if col.Name == name {
			return append([]T(nil), col.Values...), true
		}
	}
	return nil, false
}

// Rows reports the number of samples per column.
func (t Table[T]) Rows() int { return t.rows }

// Width reports the number of columns.
func (t Table[T]) Width() int { return len(t.columns) }

// Row returns a copy of the values at sample index i across all columns.
func (t Table[T]) Row(i int) ([]T, error) {
	if i < 0 || i >= t.rows {
		return nil, fmt.Errorf("dataset: row %d out of range [0, %d)", i, t.rows)
	}
	row := make([]T, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Values[i]
	}
	return row, nil
}
