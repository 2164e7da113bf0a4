package dataprocessing

import (
	apperrors "healthstats/internal/errors"
)

// Table is an ordered, string-celled tabular dataset. Every row holds exactly
// len(Columns) cells; an empty cell is a missing value.
//
// Operations never mutate the receiver. They return a new Table which may
// share row slices with the receiver when the rows are unchanged.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// Row is a read-only view over one row of a Table.
type Row struct {
	table *Table
	cells []string
}

// Get returns the cell in column col, or "" when the column is absent.
func (r Row) Get(col string) string {
	i := r.table.Index(col)
	if i < 0 {
		return ""
	}
	return r.cells[i]
}

// Cells returns the raw row slice. Callers must not modify it.
func (r Row) Cells() []string {
	return r.cells
}

// NewTable creates an empty table with the given column names.
func NewTable(name string, columns []string) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		// First occurrence wins for duplicate headers.
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether col exists.
func (t *Table) HasColumn(col string) bool {
	return t.Index(col) >= 0
}

// Require returns a missing-column error for the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return apperrors.NewMissingColumnError(t.Name, c)
		}
	}
	return nil
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.Rows[i]}
}

// Get returns the cell at row i, column col.
func (t *Table) Get(i int, col string) string {
	return t.Row(i).Get(col)
}

// Column returns a copy of every value in col.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Unique returns the distinct values of col in first-appearance order.
func (t *Table) Unique(col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range t.Column(col) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Select projects the table onto cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	out := NewTable(t.Name, cols)
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		projected := make([]string, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

// Drop removes cols. Absent columns are ignored.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []string
	for _, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Rename returns the table with columns renamed according to names.
// Columns not in the map keep their name.
func (t *Table) Rename(names map[string]string) *Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if n, ok := names[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	out := NewTable(t.Name, cols)
	out.Rows = t.Rows
	return out
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := NewTable(t.Name, t.Columns)
	for _, row := range t.Rows {
		if keep(Row{table: t, cells: row}) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// MapColumn rewrites every cell of col with fn.
func (t *Table) MapColumn(col string, fn func(string) string) (*Table, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	idx := t.Index(col)
	out := NewTable(t.Name, t.Columns)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		updated := append([]string(nil), row...)
		updated[idx] = fn(row[idx])
		out.Rows[i] = updated
	}
	return out, nil
}

// AddColumn appends a derived column computed from each row.
func (t *Table) AddColumn(name string, fn func(Row) string) *Table {
	out := NewTable(t.Name, append(append([]string(nil), t.Columns...), name))
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		extended := make([]string, len(row)+1)
		copy(extended, row)
		extended[len(row)] = fn(Row{table: t, cells: row})
		out.Rows[i] = extended
	}
	return out
}

// WithName returns a shallow copy of the table under a different name.
func (t *Table) WithName(name string) *Table {
	out := NewTable(name, t.Columns)
	out.Rows = t.Rows
	return out
}
