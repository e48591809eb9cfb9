package filesystem

import (
	"building-planner/core"
	"building-planner/stores/storetest"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (core.DrawingStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDrawingStore(dir)
	if err != nil {
		t.Fatalf("NewDrawingStore() failed: %v", err)
	}
	return store, dir
}

func TestDrawingStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DrawingStore {
		store, _ := newTestStore(t)
		return store
	})
}

func TestNewDrawingStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewDrawingStore(dir); err != nil {
		t.Fatalf("NewDrawingStore() failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("NewDrawingStore() did not create %s", dir)
	}
}

func TestCreate_WritesJSONFile(t *testing.T) {
	store, dir := newTestStore(t)

	d, err := store.Create(context.Background(), "Attic", "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, d.ID+".json")); err != nil {
		t.Errorf("drawing file missing: %v", err)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	store, dir := newTestStore(t)
	outside := filepath.Join(filepath.Dir(dir), "secret.json")
	if err := os.WriteFile(outside, []byte(`{"id":"secret","name":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, id := range []string{"../secret", "..", "a/b", ""} {
		if _, err := store.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", id, err)
		}
		if err := store.Delete(ctx, id); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Delete(%q) error = %v, want ErrNotFound", id, err)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside the store was touched: %v", err)
	}
}

func TestList_SkipsForeignFiles(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "Real", ""); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Real" {
		t.Errorf("List() = %+v, want only the real drawing", list)
	}
}
