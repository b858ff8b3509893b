package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/big5-stats/internal/stats"
)

// ParseError reports a document that holds no usable table
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing HTML: %s: %v", e.Reason, e.Err)
	}
	return "parsing HTML: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// missingMarkers are cell texts the site uses for "no value"
var missingMarkers = map[string]bool{
	"":    true,
	"—":   true,
	"–":   true,
	"-":   true,
	"N/A": true,
	"NA":  true,
	"NaN": true,
	"nan": true,
}

// Normalizer converts raw statistics pages into tables
type Normalizer struct {
	translations Translations
}

// New creates a Normalizer that renames columns through translations
func New(translations Translations) *Normalizer {
	return &Normalizer{translations: translations}
}

// Normalize extracts, flattens, translates and types the first table of doc,
// then drops every row that has a missing value.
func (n *Normalizer) Normalize(doc string) (*stats.Table, error) {
	table, err := n.materialize(doc)
	if err != nil {
		return nil, err
	}
	return table.DropMissing(), nil
}

// materialize runs every step except null-row elimination
func (n *Normalizer) materialize(doc string) (*stats.Table, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, &ParseError{Reason: "reading document", Err: err}
	}

	g, ok := extractFirstTable(parsed)
	if !ok {
		return nil, &ParseError{Reason: "no table found"}
	}

	names := Flatten(g.header)
	if len(names) < g.width {
		// Body rows wider than the header get positional names.
		for i := len(names); i < g.width; i++ {
			names = append(names, strconv.Itoa(i))
		}
	}
	for i, name := range names {
		names[i] = n.translations.Translate(name)
	}

	return typeColumns(names, g.body)
}

// Flatten turns stacked header rows into one name per column.
//
// A single header row is returned as-is. With several rows, each column's
// levels are joined with one space and trimmed. Blank levels are skipped.
func Flatten(levels [][]string) []string {
	if len(levels) == 0 {
		return []string{}
	}
	if len(levels) == 1 {
		out := make([]string, len(levels[0]))
		copy(out, levels[0])
		return out
	}

	width := 0
	for _, level := range levels {
		if len(level) > width {
			width = len(level)
		}
	}

	names := make([]string, width)
	for c := 0; c < width; c++ {
		parts := make([]string, 0, len(levels))
		for _, level := range levels {
			if c >= len(level) {
				continue
			}
			if text := strings.TrimSpace(level[c]); text != "" {
				parts = append(parts, text)
			}
		}
		names[c] = strings.TrimSpace(strings.Join(parts, " "))
	}
	return names
}

// typeColumns infers each column's type and converts the cells to values.
//
// A column is numeric when at least one cell parses as a number and at least
// half of its non-missing cells do. Cells of a numeric column that do not parse
// become missing.
func typeColumns(names []string, body [][]string) (*stats.Table, error) {
	columns := make([]stats.Column, len(names))
	for c, name := range names {
		columns[c] = stats.Column{Name: name, Type: inferType(body, c)}
	}

	rows := make([][]stats.Value, len(body))
	for r, cells := range body {
		row := make([]stats.Value, len(columns))
		for c, col := range columns {
			text := ""
			if c < len(cells) {
				text = cells[c]
			}
			row[c] = toValue(text, col.Type)
		}
		rows[r] = row
	}

	return stats.New(columns, rows)
}

func inferType(body [][]string, c int) stats.ColumnType {
	present, numeric := 0, 0
	for _, cells := range body {
		if c >= len(cells) || isMissing(cells[c]) {
			continue
		}
		present++
		if _, ok := parseNumber(cells[c]); ok {
			numeric++
		}
	}
	if numeric > 0 && numeric*2 >= present {
		return stats.Numeric
	}
	return stats.Text
}

func toValue(text string, ct stats.ColumnType) stats.Value {
	if isMissing(text) {
		return stats.Missing()
	}
	if ct == stats.Numeric {
		f, ok := parseNumber(text)
		if !ok {
			return stats.Missing()
		}
		return stats.Number(f)
	}
	return stats.TextValue(strings.TrimSpace(text))
}

func isMissing(text string) bool {
	return missingMarkers[strings.TrimSpace(text)]
}

// parseNumber accepts plain decimals with optional sign and "," thousands separators
func parseNumber(text string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
