package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// SeasonEntry is one line of the seasons listing
type SeasonEntry struct {
	Label string     `json:"label"`
	Key   season.Key `json:"key"`
	Saved bool       `json:"saved"`
}

// WriteTable writes a stats table in the specified format
func WriteTable(w io.Writer, tbl *stats.Table, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, tbl.Records())
	case FormatCSV:
		return writeTableCSV(w, tbl)
	case FormatText:
		return writeTableText(w, tbl)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSeasons writes the season catalog
func WriteSeasons(w io.Writer, entries []SeasonEntry, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatCSV:
		records := [][]string{{"label", "key", "saved"}}
		for _, e := range entries {
			records = append(records, []string{e.Label, e.Key.String(), fmt.Sprint(e.Saved)})
		}
		return writeCSV(w, records)
	case FormatText:
		t := newPrettyTable(w)
		t.AppendHeader(table.Row{"Temporada", "Chave", "Salva"})
		for _, e := range entries {
			saved := ""
			if e.Saved {
				saved = "sim"
			}
			t.AppendRow(table.Row{e.Label, e.Key, saved})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteColumns writes column names with their inferred types
func WriteColumns(w io.Writer, columns []stats.Column, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, columns)
	case FormatCSV:
		records := [][]string{{"name", "type"}}
		for _, c := range columns {
			records = append(records, []string{c.Name, c.Type.String()})
		}
		return writeCSV(w, records)
	case FormatText:
		t := newPrettyTable(w)
		t.AppendHeader(table.Row{"#", "Coluna", "Tipo"})
		for i, c := range columns {
			t.AppendRow(table.Row{i + 1, c.Name, c.Type})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteValues writes the distinct values of one column
func WriteValues(w io.Writer, column string, values []stats.Value, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, values)
	case FormatCSV:
		records := [][]string{{column}}
		for _, v := range values {
			records = append(records, []string{v.String()})
		}
		return writeCSV(w, records)
	case FormatText:
		for _, v := range values {
			fmt.Fprintln(w, v.String())
		}
		fmt.Fprintf(w, "\nTotal: %d\n", len(values))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func writeTableCSV(w io.Writer, tbl *stats.Table) error {
	records := make([][]string, 0, tbl.Len()+1)
	records = append(records, tbl.ColumnNames())
	for _, row := range tbl.Rows() {
		values := row.Values()
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = v.String()
		}
		records = append(records, cells)
	}
	return writeCSV(w, records)
}

// writeTableText renders the table with numeric columns right-aligned
func writeTableText(w io.Writer, tbl *stats.Table) error {
	if tbl.Len() == 0 {
		fmt.Fprintln(w, "No rows found.")
		return nil
	}

	t := newPrettyTable(w)

	header := make(table.Row, 0, len(tbl.Columns()))
	configs := make([]table.ColumnConfig, 0)
	for i, c := range tbl.Columns() {
		header = append(header, c.Name)
		if c.Type == stats.Numeric {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, row := range tbl.Rows() {
		values := row.Values()
		r := make(table.Row, len(values))
		for i, v := range values {
			r[i] = v.String()
		}
		t.AppendRow(r)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("Total: %d", tbl.Len())})

	t.Render()
	return nil
}

func newPrettyTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}
