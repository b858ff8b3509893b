// Package cli implements the command-line interface for big5-stats.
//
// The cli package provides the Cobra-based CLI: listing the season catalog,
// printing a season's normalized table (text, JSON or CSV) with filters,
// projection and sorting, inspecting columns and their values, saving and
// reading offline snapshots, and running the JSON API server. It coordinates
// the config, fetcher, normalizer, pipeline, cache, storage and server packages.
package cli
