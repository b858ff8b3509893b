// Package pipeline loads one season's normalized statistics table.
//
// A Pipeline runs the fetch, normalize and required-column checks in order and
// stops at the first failure. It is the loader that the cache wraps.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/normalizer"
	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

// Fetcher retrieves the raw page for a season
type Fetcher interface {
	Fetch(ctx context.Context, key season.Key) (string, error)
}

// Normalizer converts a raw page into a table
type Normalizer interface {
	Normalize(doc string) (*stats.Table, error)
}

// LoadErrorPrefix starts the message shown to users when a season fails to load
const LoadErrorPrefix = "Erro ao carregar dados: "

// RequiredColumns must exist in every loaded table
var RequiredColumns = []string{normalizer.CountryColumn, normalizer.TeamColumn}

// MissingColumnsError reports a normalized table without the columns consumers filter and group by
type MissingColumnsError struct {
	Season  season.Key
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("season %s: missing required columns: %s", e.Season, strings.Join(e.Missing, ", "))
}

// Pipeline composes a Fetcher and a Normalizer
type Pipeline struct {
	fetcher    Fetcher
	normalizer Normalizer
	required   []string
}

// New creates a Pipeline that validates RequiredColumns
func New(f Fetcher, n Normalizer) *Pipeline {
	return &Pipeline{
		fetcher:    f,
		normalizer: n,
		required:   RequiredColumns,
	}
}

// Load fetches and normalizes the table for key
func (p *Pipeline) Load(ctx context.Context, key season.Key) (*stats.Table, error) {
	start := time.Now()

	doc, err := p.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	table, err := p.normalizer.Normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("season %s: %w", key, err)
	}

	if err := Validate(key, table, p.required); err != nil {
		return nil, err
	}

	logger.Info("season loaded", logger.Fields{
		"season":   key.String(),
		"rows":     table.Len(),
		"columns":  len(table.Columns()),
		"duration": time.Since(start).String(),
	})

	return table, nil
}

// Validate fails with *MissingColumnsError when table lacks any of columns
func Validate(key season.Key, table *stats.Table, columns []string) error {
	missing := make([]string, 0)
	for _, name := range columns {
		if !table.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Season: key, Missing: missing}
	}
	return nil
}
