package season

import (
	"fmt"
	"strings"
)

// Option is one entry of the season selector
type Option struct {
	Label string `json:"label"`
	Key   Key    `json:"key"`
}

// catalog is ordered newest first; the first entry is the in-progress season.
var catalog = []Option{
	{Label: "2023-2024 (Atual)", Key: Current},
	{Label: "2022-2023", Key: "2022-2023"},
	{Label: "2021-2022", Key: "2021-2022"},
	{Label: "2020-2021", Key: "2020-2021"},
	{Label: "2019-2020", Key: "2019-2020"},
	{Label: "2018-2019", Key: "2018-2019"},
}

// Catalog returns a copy of the selectable seasons, newest first
func Catalog() []Option {
	out := make([]Option, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the key for a catalog label
func Lookup(label string) (Key, bool) {
	for _, opt := range catalog {
		if opt.Label == label {
			return opt.Key, true
		}
	}
	return "", false
}

// Resolve accepts either a catalog label or a season key and returns the key.
// Keys outside the catalog are accepted as long as they parse.
func Resolve(input string) (Key, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("season cannot be empty")
	}
	if k, ok := Lookup(input); ok {
		return k, nil
	}
	return Parse(input)
}

// Label returns the catalog label for k, or the key itself when k is not listed
func Label(k Key) string {
	for _, opt := range catalog {
		if opt.Key == k {
			return opt.Label
		}
	}
	return string(k)
}
