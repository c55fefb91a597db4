package storage

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_GetSetDelete(t *testing.T) {
	store := newTestStore(t)

	if _, ok, err := store.Get(HistoryKey); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := store.Set(HistoryKey, `{"a":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(HistoryKey)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if v != `{"a":1}` {
		t.Fatalf("value=%q, want %q", v, `{"a":1}`)
	}

	// Overwrite
	if err := store.Set(HistoryKey, `{}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, _, _ = store.Get(HistoryKey)
	if v != `{}` {
		t.Fatalf("value=%q after overwrite, want %q", v, `{}`)
	}

	if err := store.Delete(HistoryKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(HistoryKey); ok {
		t.Fatal("key should be gone after Delete")
	}
	// Deleting a missing key is fine
	if err := store.Delete("missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deckchat.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Set(HistoryKey, "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	v, ok, err := reopened.Get(HistoryKey)
	if err != nil || !ok || v != "persisted" {
		t.Fatalf("Get after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStore_Closed(t *testing.T) {
	store := newTestStore(t)
	_ = store.Close()
	if err := store.Set("k", "v"); err != ErrSlotClosed {
		t.Fatalf("Set after close err=%v, want ErrSlotClosed", err)
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
