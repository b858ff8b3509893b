// Package storage provides JSON-based persistence for season table snapshots.
//
// A snapshot is one normalized season table written to
// snapshot_<season>.json under the data directory, by default
// ~/.local/share/big5-stats/. Snapshots are only written and read when the
// user asks for it; the live pipeline never falls back to them.
package storage
