package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/big5-stats/internal/cache"
	"github.com/pfrederiksen/big5-stats/internal/filter"
	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/normalizer"
	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/storage"
)

func addSeasonFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSeason, "season", "", "Season label (e.g. '2022-2023') or key; defaults to the current season")
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "Read the saved snapshot instead of fetching")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or csv")
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	switch format {
	case FormatText, FormatJSON, FormatCSV:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", flagFormat)
	}
}

func newSeasonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "List the available seasons",
		Args:  cobra.NoArgs,
		RunE:  runSeasons,
	}
	addFormatFlag(cmd)
	return cmd
}

func runSeasons(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	saved := make(map[season.Key]bool)
	if store, err := storage.Open(cfg.DataDir); err == nil {
		keys, err := store.ListSnapshots()
		if err != nil {
			logger.Warn("listing snapshots failed", logger.Fields{"error": err.Error()})
		}
		for _, k := range keys {
			saved[k] = true
		}
	}

	catalog := season.Catalog()
	entries := make([]SeasonEntry, len(catalog))
	for i, opt := range catalog {
		entries[i] = SeasonEntry{Label: opt.Label, Key: opt.Key, Saved: saved[opt.Key]}
	}
	return WriteSeasons(cmd.OutOrStdout(), entries, format)
}

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print a season's statistics table",
		Long: `Fetch and normalize a season's table, then filter, sort and project it.

Examples:
  big5-stats table --season 2022-2023 --country "eng ENG"
  big5-stats table --where "Pontos=90" --columns Equipe,Pontos
  big5-stats table --sort Pontos:desc --format csv --save`,
		Args: cobra.NoArgs,
		RunE: runTable,
	}

	addSeasonFlag(cmd)
	addFormatFlag(cmd)
	cmd.Flags().StringVar(&flagCountry, "country", "", "Keep only teams from this country (e.g. 'es ESP')")
	cmd.Flags().StringVar(&flagTeam, "team", "", "Keep only this team")
	cmd.Flags().StringArrayVar(&flagWhere, "where", nil, "Filter rows by column=value (repeatable)")
	cmd.Flags().StringVar(&flagColumns, "columns", "", "Comma-separated columns to print")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort by column, optionally column:desc")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Save the fetched table as a snapshot")

	return cmd
}

func buildQuery() (*filter.Query, error) {
	q := filter.NewQuery().
		Where(normalizer.CountryColumn, flagCountry).
		Where(normalizer.TeamColumn, flagTeam)

	for _, raw := range flagWhere {
		c, err := filter.ParseCriterion(raw)
		if err != nil {
			return nil, err
		}
		q.Criteria = append(q.Criteria, c)
	}

	col, desc, err := filter.ParseSort(flagSort)
	if err != nil {
		return nil, err
	}
	q.SortBy, q.Desc = col, desc
	q.Columns = filter.ParseColumns(flagColumns)

	return q, nil
}

func runTable(cmd *cobra.Command, args []string) error {
	if flagSave && flagOffline {
		return fmt.Errorf("--save and --offline cannot be used together")
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}
	key, err := resolveSeason()
	if err != nil {
		return err
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	logger.Debug("loading table", logger.Fields{
		"season":  key.String(),
		"label":   season.Label(key),
		"offline": flagOffline,
	})

	tbl, err := loadTable(cmd.Context(), key)
	if err != nil {
		return err
	}

	out, err := query.Apply(tbl)
	if err != nil {
		return err
	}

	return WriteTable(cmd.OutOrStdout(), out, format)
}

func newColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List a season's columns and their types",
		Args:  cobra.NoArgs,
		RunE:  runColumns,
	}
	addSeasonFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func runColumns(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	key, err := resolveSeason()
	if err != nil {
		return err
	}

	tbl, err := loadTable(cmd.Context(), key)
	if err != nil {
		return err
	}

	return WriteColumns(cmd.OutOrStdout(), tbl.Columns(), format)
}

func newValuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values <column>",
		Short: "List the distinct values of a column",
		Long: `List the distinct values of a column in first-seen order.

Example:
  big5-stats values País --season 2021-2022`,
		Args: cobra.ExactArgs(1),
		RunE: runValues,
	}
	addSeasonFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func runValues(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	key, err := resolveSeason()
	if err != nil {
		return err
	}

	tbl, err := loadTable(cmd.Context(), key)
	if err != nil {
		return err
	}

	values, err := tbl.Unique(args[0])
	if err != nil {
		return err
	}

	return WriteValues(cmd.OutOrStdout(), args[0], values, format)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides BIG5_LISTEN_ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.ListenAddr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	c := newCache()
	go c.Sweep(ctx, cache.DefaultSweepInterval)

	return newServer(c).ListenAndServe(ctx, addr)
}
