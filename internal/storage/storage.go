package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

// ErrNoSnapshot is returned when no snapshot was saved for a season
var ErrNoSnapshot = errors.New("no snapshot saved")

// Snapshot is a saved season table
type Snapshot struct {
	Season  season.Key   `json:"season"`
	SavedAt string       `json:"saved_at"` // RFC3339 timestamp
	Table   *stats.Table `json:"table"`
}

// Storage handles persistence of season snapshots
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if needed
func New(dataDir string) (*Storage, error) {
	s, err := Open(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return s, nil
}

// Open returns a read-only view of dataDir without touching the filesystem.
// A directory that does not exist simply holds no snapshots.
func Open(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

func (s *Storage) snapshotPath(key season.Key) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", key))
}

// SaveSnapshot writes table as the snapshot for key, replacing any previous one
func (s *Storage) SaveSnapshot(key season.Key, table *stats.Table) error {
	snapshot := Snapshot{
		Season:  key,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Table:   table,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Write then rename so a crash never leaves a truncated snapshot behind.
	path := s.snapshotPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the snapshot for key. It returns an error wrapping
// ErrNoSnapshot when none was saved.
func (s *Storage) LoadSnapshot(key season.Key) (*Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("season %s: %w", key, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Table == nil {
		return nil, fmt.Errorf("parsing snapshot: season %s has no table", key)
	}

	return &snapshot, nil
}

// ListSnapshots returns the seasons that have a saved snapshot
func (s *Storage) ListSnapshots() ([]season.Key, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "snapshot_*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	keys := make([]season.Key, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "snapshot_"), ".json")
		if k, err := season.Parse(name); err == nil {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
