package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ColumnType is the scalar type inferred for a column
type ColumnType int

const (
	Text ColumnType = iota
	Numeric
)

func (c ColumnType) String() string {
	if c == Numeric {
		return "numeric"
	}
	return "text"
}

// MarshalText implements encoding.TextMarshaler
func (c ColumnType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ColumnType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*c = Numeric
	case "text":
		*c = Text
	default:
		return fmt.Errorf("unknown column type %q", b)
	}
	return nil
}

type valueKind uint8

const (
	kindMissing valueKind = iota
	kindNumber
	kindText
)

// Value is one cell: a number, a text or missing. The zero Value is missing.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{kind: kindNumber, num: f}
}

// TextValue returns a textual value
func TextValue(s string) Value {
	return Value{kind: kindText, text: s}
}

// Missing returns the missing value
func Missing() Value {
	return Value{}
}

// IsMissing reports whether the cell has no value
func (v Value) IsMissing() bool {
	return v.kind == kindMissing
}

// Float returns the numeric value and whether v is a number
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// String formats the value for display. Missing values render as "".
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return ""
	}
}

// Equal compares kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindNumber:
		return v.num == o.num
	case kindText:
		return v.text == o.text
	default:
		return true
	}
}

// Less orders numbers numerically and texts lexically. Missing sorts after
// everything else, and numbers sort before texts.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		if v.kind == kindMissing {
			return false
		}
		if o.kind == kindMissing {
			return true
		}
		return v.kind < o.kind
	}
	switch v.kind {
	case kindNumber:
		return v.num < o.num
	case kindText:
		return v.text < o.text
	default:
		return false
	}
}

// MarshalJSON encodes numbers as JSON numbers, texts as strings and missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.num)
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = Missing()
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("decoding value %s: %w", b, err)
		}
		*v = Number(f)
	}
	return nil
}
