package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckpointRoundtrip(t *testing.T) {
	dir := t.TempDir()

	cp := NewCheckpoint()
	cp.MarkDone("https://www.dvago.pk/cat/pain-relief")
	cp.MarkDone("https://www.dvago.pk/cat/baby-care")
	cp.MarkDone("https://www.dvago.pk/cat/pain-relief") // repeat is a no-op
	cp.Products = 42

	if err := cp.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadCheckpoint(dir)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}

	if len(loaded.DoneCategories) != 2 {
		t.Fatalf("done = %v, want 2 entries", loaded.DoneCategories)
	}
	if !loaded.Done("https://www.dvago.pk/cat/pain-relief") {
		t.Error("pain-relief should be done")
	}
	if loaded.Done("https://www.dvago.pk/cat/vitamins") {
		t.Error("vitamins should not be done")
	}
	if loaded.Products != 42 {
		t.Errorf("products = %d", loaded.Products)
	}
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	cp, err := LoadCheckpoint(t.TempDir())
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if len(cp.DoneCategories) != 0 {
		t.Errorf("fresh checkpoint has done entries: %v", cp.DoneCategories)
	}
	if cp.Done("anything") {
		t.Error("fresh checkpoint reports done")
	}
}

func TestLoadCheckpointCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, checkpointFile), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCheckpoint(dir); err == nil {
		t.Error("expected error for corrupt checkpoint")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	if err := Clear(dir); err != nil {
		t.Fatalf("Clear on empty dir: %v", err)
	}

	cp := NewCheckpoint()
	if err := cp.Save(dir); err != nil {
		t.Fatal(err)
	}
	if err := Clear(dir); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, checkpointFile)); !os.IsNotExist(err) {
		t.Error("checkpoint file still present")
	}
}
