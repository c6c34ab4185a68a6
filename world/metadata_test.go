package world

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meta := NewMetadata()
	meta.Seed = 12345
	meta.SpawnPoint = [2]float64{10, 200}
	meta.PlayTimeSeconds = 3600
	meta.Player = map[string]any{"health": 100}

	if err := store.SaveMetadata(meta); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := store.LoadMetadata()
	if loaded.Seed != 12345 {
		t.Errorf("seed = %d, want 12345", loaded.Seed)
	}
	if loaded.SpawnPoint != [2]float64{10, 200} {
		t.Errorf("spawn = %v", loaded.SpawnPoint)
	}
	if loaded.PlayTimeSeconds != 3600 {
		t.Errorf("play time = %d", loaded.PlayTimeSeconds)
	}
	if loaded.Player["health"] != 100 {
		t.Errorf("player payload = %v", loaded.Player)
	}
}

func TestMetadataMissingDefaults(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meta := store.LoadMetadata()
	if meta == nil {
		t.Fatal("nil metadata")
	}
	if meta.Version != MetadataVersion {
		t.Errorf("version = %d", meta.Version)
	}
	if meta.CreatedAt == "" {
		t.Error("created_at empty")
	}
}

// Unknown fields are ignored, missing fields default.
func TestMetadataForwardCompatible(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	doc := "version: 1\nseed: 99\nfuture_field: whatever\n"
	if err := os.WriteFile(filepath.Join(dir, "world.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := store.LoadMetadata()
	if meta.Seed != 99 {
		t.Errorf("seed = %d, want 99", meta.Seed)
	}
	if meta.CreatedAt == "" {
		t.Error("missing created_at did not default")
	}
}

func TestMetadataCorruptFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "world.yaml"), []byte("{{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := store.LoadMetadata()
	if meta == nil {
		t.Fatal("nil metadata on corrupt file")
	}
	if meta.Version != MetadataVersion {
		t.Errorf("version = %d", meta.Version)
	}
}
