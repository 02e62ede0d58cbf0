package mbtiles

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/noisefield/internal/tile"
	"github.com/paulmach/orb"
)

func testMetadata() Metadata {
	return Metadata{
		Name:        "Ridged pyramid",
		Format:      "png",
		Description: "Test description",
		Pipeline:    "turbulence(ridged)",
		Type:        "baselayer",
		Version:     "1.0",
		Bounds:      orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 4}},
		MinZoom:     0,
		MaxZoom:     3,
		TileSize:    256,
	}
}

func TestWriter_New(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := New(dbPath, testMetadata())
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tiles'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected tiles table to exist, got count=%d", count)
	}

	err = w.db.QueryRow("SELECT COUNT(*) FROM metadata").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query metadata: %v", err)
	}
	if count != len(testMetadata().ToMap()) {
		t.Errorf("Expected %d metadata rows, got %d", len(testMetadata().ToMap()), count)
	}
}

func TestWriter_WriteTile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := New(dbPath, Metadata{Name: "Test", Format: "png"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	c := tile.NewCoords(3, 5, 1)
	if err := w.WriteTile(c, []byte("fake png data")); err != nil {
		t.Fatalf("Failed to write tile: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	if w.Written() != 1 {
		t.Errorf("Written() = %d, want 1", w.Written())
	}

	// Rows are stored flipped (TMS).
	var tileData []byte
	err = w.db.QueryRow("SELECT tile_data FROM tiles WHERE zoom_level=? AND tile_column=? AND tile_row=?",
		3, 5, 6).Scan(&tileData)
	if err != nil {
		t.Fatalf("Failed to read tile: %v", err)
	}
	if len(tileData) == 0 {
		t.Error("Expected tile data to be stored")
	}
}

func TestWriter_RejectsInvalidTile(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "test.mbtiles"), Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteTile(tile.NewCoords(1, 2, 0), []byte("x")); err == nil {
		t.Error("Expected error for tile outside its zoom level")
	}
}

func TestWriter_BatchFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := New(dbPath, Metadata{Name: "Test", Format: "png"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	// z4 holds 256 tiles, more than two batches.
	n := 0
	var writeErr error
	tile.Range{MinZ: 4, MaxZ: 4}.ForEach(func(c tile.Coords) {
		if writeErr == nil {
			writeErr = w.WriteTile(c, []byte("fake png data"))
			n++
		}
	})
	if writeErr != nil {
		t.Fatalf("Failed to write tiles: %v", writeErr)
	}
	if w.Written() != 200 {
		t.Errorf("Written() before close = %d, want 200", w.Written())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&count); err != nil {
		t.Fatalf("Failed to query tiles: %v", err)
	}
	if count != n {
		t.Errorf("Expected %d tiles, got %d", n, count)
	}
}

func TestWriter_ReplaceExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := New(dbPath, Metadata{Name: "Test", Format: "png"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	c := tile.NewCoords(2, 1, 3)
	if err := w.WriteTile(c, []byte("first version")); err != nil {
		t.Fatalf("Failed to write first tile: %v", err)
	}
	w.Flush()

	if err := w.WriteTile(c, []byte("second version")); err != nil {
		t.Fatalf("Failed to write second tile: %v", err)
	}
	w.Flush()

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&count); err != nil {
		t.Fatalf("Failed to query tiles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tile (replaced), got %d", count)
	}
}
