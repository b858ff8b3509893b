package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/big5-stats/internal/stats"
)

// Criterion keeps the rows whose Column equals Value
type Criterion struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (c Criterion) String() string {
	return c.Column + "=" + c.Value
}

// Query describes the filtering, ordering and projection of a table
type Query struct {
	Criteria []Criterion `json:"criteria,omitempty"`
	SortBy   string      `json:"sort_by,omitempty"`
	Desc     bool        `json:"desc,omitempty"`
	Columns  []string    `json:"columns,omitempty"`
}

// NewQuery creates a query that returns tables unchanged
func NewQuery() *Query {
	return &Query{
		Criteria: []Criterion{},
		Columns:  []string{},
	}
}

// Where adds an equality criterion. Empty values are ignored.
func (q *Query) Where(column, value string) *Query {
	if strings.TrimSpace(value) == "" {
		return q
	}
	q.Criteria = append(q.Criteria, Criterion{Column: column, Value: value})
	return q
}

// IsEmpty reports whether Apply would return the table unchanged
func (q *Query) IsEmpty() bool {
	return len(q.Criteria) == 0 && q.SortBy == "" && len(q.Columns) == 0
}

// Apply filters, sorts and projects table. Unknown columns fail with
// *stats.UnknownColumnError.
func (q *Query) Apply(table *stats.Table) (*stats.Table, error) {
	if q.IsEmpty() {
		return table, nil
	}

	out := table
	var err error

	for _, c := range q.Criteria {
		value, err := criterionValue(out, c)
		if err != nil {
			return nil, err
		}
		if out, err = out.Filter(c.Column, value); err != nil {
			return nil, err
		}
	}

	if q.SortBy != "" {
		if out, err = out.Sort(q.SortBy, q.Desc); err != nil {
			return nil, err
		}
	}

	if len(q.Columns) > 0 {
		if out, err = out.Select(q.Columns...); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// criterionValue converts the criterion text into a value of the column's type
func criterionValue(table *stats.Table, c Criterion) (stats.Value, error) {
	ct, ok := table.ColumnType(c.Column)
	if !ok {
		return stats.Value{}, &stats.UnknownColumnError{Column: c.Column}
	}
	if ct == stats.Numeric {
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			return stats.Value{}, fmt.Errorf("filter %s: %q is not a number", c, c.Value)
		}
		return stats.Number(f), nil
	}
	return stats.TextValue(c.Value), nil
}

// ParseCriterion reads "column=value". The column and value are trimmed; the
// value may itself contain "=".
func ParseCriterion(input string) (Criterion, error) {
	column, value, ok := strings.Cut(input, "=")
	column = strings.TrimSpace(column)
	value = strings.TrimSpace(value)
	if !ok || column == "" || value == "" {
		return Criterion{}, fmt.Errorf("invalid filter %q (want column=value)", input)
	}
	return Criterion{Column: column, Value: value}, nil
}

// ParseSort reads "column", "column:asc" or "column:desc"
func ParseSort(input string) (string, bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false, nil
	}

	column, order, hasOrder := strings.Cut(input, ":")
	column = strings.TrimSpace(column)
	if column == "" {
		return "", false, fmt.Errorf("invalid sort %q: missing column", input)
	}
	if !hasOrder {
		return column, false, nil
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "asc":
		return column, false, nil
	case "desc":
		return column, true, nil
	default:
		return "", false, fmt.Errorf("invalid sort order %q (must be 'asc' or 'desc')", order)
	}
}

// ParseColumns splits a comma-separated column list, dropping blanks
func ParseColumns(input string) []string {
	columns := make([]string, 0)
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}
