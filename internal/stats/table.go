package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Column describes one table column
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is an ordered set of rows sharing the same columns
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]Value
}

// New builds a table. Every row must have one value per column.
//
// Two columns may share a name. Both are kept positionally, but lookups by name
// (Get, Filter, Select, Map) resolve to the later one.
func New(columns []Column, rows [][]Value) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)

	return &Table{
		columns: cols,
		index:   buildIndex(cols),
		rows:    rows,
	}, nil
}

func buildIndex(columns []Column) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.Name] = i
	}
	return index
}

// derive returns a table with the same columns and a new row set
func (t *Table) derive(rows [][]Value) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Columns returns the columns in source order
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in source order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with this name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnType returns the inferred type of a column
func (t *Table) ColumnType(name string) (ColumnType, bool) {
	i, ok := t.index[name]
	if !ok {
		return Text, false
	}
	return t.columns[i].Type, true
}

// NumericColumns returns the names of numeric columns in source order
func (t *Table) NumericColumns() []string {
	return t.columnsOfType(Numeric)
}

// TextColumns returns the names of text columns in source order
func (t *Table) TextColumns() []string {
	return t.columnsOfType(Text)
}

func (t *Table) columnsOfType(ct ColumnType) []string {
	names := make([]string, 0)
	for _, c := range t.columns {
		if c.Type == ct {
			names = append(names, c.Name)
		}
	}
	return names
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row
func (t *Table) Row(i int) Row {
	return Row{table: t, values: t.rows[i]}
}

// Rows returns all rows in order
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, values := range t.rows {
		rows[i] = Row{table: t, values: values}
	}
	return rows
}

// HasMissing reports whether any row contains a missing value
func (t *Table) HasMissing() bool {
	for _, row := range t.rows {
		if rowHasMissing(row) {
			return true
		}
	}
	return false
}

// DropMissing removes every row holding at least one missing value.
// Running it again on the result changes nothing.
func (t *Table) DropMissing() *Table {
	kept := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		if !rowHasMissing(row) {
			kept = append(kept, row)
		}
	}
	return t.derive(kept)
}

func rowHasMissing(row []Value) bool {
	for _, v := range row {
		if v.IsMissing() {
			return true
		}
	}
	return false
}

// FilterFunc keeps the rows for which keep returns true
func (t *Table) FilterFunc(keep func(Row) bool) *Table {
	kept := make([][]Value, 0)
	for _, values := range t.rows {
		if keep(Row{table: t, values: values}) {
			kept = append(kept, values)
		}
	}
	return t.derive(kept)
}

// Filter keeps the rows whose column equals value
func (t *Table) Filter(column string, value Value) (*Table, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, &UnknownColumnError{Column: column}
	}
	return t.FilterFunc(func(r Row) bool {
		return r.values[i].Equal(value)
	}), nil
}

// Select projects the table onto the named columns, in the given order
func (t *Table) Select(columns ...string) (*Table, error) {
	positions := make([]int, len(columns))
	cols := make([]Column, len(columns))
	for j, name := range columns {
		i, ok := t.index[name]
		if !ok {
			return nil, &UnknownColumnError{Column: name}
		}
		positions[j] = i
		cols[j] = t.columns[i]
	}

	rows := make([][]Value, len(t.rows))
	for r, row := range t.rows {
		projected := make([]Value, len(positions))
		for j, i := range positions {
			projected[j] = row[i]
		}
		rows[r] = projected
	}

	return &Table{columns: cols, index: buildIndex(cols), rows: rows}, nil
}

// Unique returns the distinct values of a column in first-seen order
func (t *Table) Unique(column string) ([]Value, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, &UnknownColumnError{Column: column}
	}

	seen := make(map[Value]bool)
	values := make([]Value, 0)
	for _, row := range t.rows {
		v := row[i]
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values, nil
}

// Sort returns the table ordered by column. The sort is stable, so ties keep
// source order, and missing values always come last.
func (t *Table) Sort(column string, desc bool) (*Table, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, &UnknownColumnError{Column: column}
	}

	rows := make([][]Value, len(t.rows))
	copy(rows, t.rows)

	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := rows[a][i], rows[b][i]
		if desc && !va.IsMissing() && !vb.IsMissing() {
			return vb.Less(va)
		}
		return va.Less(vb)
	})

	return t.derive(rows), nil
}

// Records returns the rows as ordered column-name/value objects
func (t *Table) Records() []Record {
	records := make([]Record, len(t.rows))
	for i, values := range t.rows {
		records[i] = Record{columns: t.columns, values: values}
	}
	return records
}

type tableJSON struct {
	Columns []Column  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// MarshalJSON encodes the table as its columns plus positional rows
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = [][]Value{}
	}
	return json.Marshal(tableJSON{Columns: t.columns, Rows: rows})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (t *Table) UnmarshalJSON(b []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	decoded, err := New(raw.Columns, raw.Rows)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// Row is one team's statistics
type Row struct {
	table  *Table
	values []Value
}

// Get returns the value of a named column
func (r Row) Get(column string) (Value, bool) {
	i, ok := r.table.index[column]
	if !ok {
		return Missing(), false
	}
	return r.values[i], true
}

// Values returns a copy of the row's values in column order
func (r Row) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Map returns the row keyed by column name. With duplicate column names the
// later column overwrites the earlier one.
func (r Row) Map() map[string]Value {
	m := make(map[string]Value, len(r.values))
	for i, c := range r.table.columns {
		m[c.Name] = r.values[i]
	}
	return m
}

// Record is a row that encodes to a JSON object with keys in column order.
// A name shared by several columns appears once, at its first position, with
// the value of the last such column, as in Row.Map.
type Record struct {
	columns []Column
	values  []Value
}

// MarshalJSON implements json.Marshaler
func (r Record) MarshalJSON() ([]byte, error) {
	last := make(map[string]int, len(r.columns))
	for i, c := range r.columns {
		last[c.Name] = i
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(r.columns))
	for _, c := range r.columns {
		if written[c.Name] {
			continue
		}
		if len(written) > 0 {
			buf.WriteByte(',')
		}
		written[c.Name] = true

		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[last[c.Name]].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnknownColumnError is returned when an operation names a column the table lacks
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %s", e.Column)
}
