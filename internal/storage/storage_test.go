package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

func sampleTable(t *testing.T) *stats.Table {
	t.Helper()
	tbl, err := stats.New(
		[]stats.Column{{Name: "Equipe", Type: stats.Text}, {Name: "Pontos", Type: stats.Numeric}},
		[][]stats.Value{
			{stats.TextValue("Barcelona"), stats.Number(88)},
			{stats.TextValue("Girona"), stats.Number(81)},
		},
	)
	if err != nil {
		t.Fatalf("stats.New() error: %v", err)
	}
	return tbl
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tbl := sampleTable(t)
	if err := store.SaveSnapshot("2022-2023", tbl); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	snap, err := store.LoadSnapshot("2022-2023")
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}

	if snap.Season != "2022-2023" {
		t.Errorf("Season = %q, want 2022-2023", snap.Season)
	}
	if snap.SavedAt == "" {
		t.Error("SavedAt should be set")
	}
	if diff := cmp.Diff(tbl.Columns(), snap.Table.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if snap.Table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", snap.Table.Len())
	}
	if v, _ := snap.Table.Row(1).Get("Pontos"); !v.Equal(stats.Number(81)) {
		t.Errorf("second row Pontos = %v, want 81", v)
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	_, err = store.LoadSnapshot(season.Current)
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNoSnapshot", err)
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "snapshot_current.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = store.LoadSnapshot(season.Current)
	if err == nil || errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want a parse error", err)
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for _, key := range []season.Key{season.Current, "2019-2020"} {
		if err := store.SaveSnapshot(key, sampleTable(t)); err != nil {
			t.Fatalf("SaveSnapshot(%s) error: %v", key, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "snapshot_garbage.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	keys, err := store.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error: %v", err)
	}
	if diff := cmp.Diff([]season.Key{"2019-2020", season.Current}, keys); diff != "" {
		t.Errorf("ListSnapshots() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(store.Dir()); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	keys, err := store.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("ListSnapshots() = %v, want none", keys)
	}
	if _, err := store.LoadSnapshot(season.Current); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNoSnapshot", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Open() created %s", dir)
	}
}
