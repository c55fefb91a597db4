package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestImportHistory_MergesAndSkipsExisting(t *testing.T) {
	slot := NewMemorySlot()
	_ = slot.Set(HistoryKey, `{"keep":{"title":"Mine","messages":[],"createdAt":"2024-01-01T00:00:00Z"}}`)

	export := `{
		"keep": {"title":"Theirs","messages":[],"createdAt":"2024-01-02T00:00:00Z"},
		"new1": {"title":"Imported","messages":[{"id":"m1","sender":"user","timestamp":"2024-01-03T00:00:00Z","type":"text","text":"hi"}],"createdAt":"2024-01-03T00:00:00Z"},
		"new2": {"messages":null,"createdAt":"2024-01-04T00:00:00Z"}
	}`
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := ImportHistory(path, slot)
	if err != nil {
		t.Fatalf("ImportHistory: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported=%d, want 2", n)
	}

	raw, _, _ := slot.Get(HistoryKey)
	var got map[string]struct {
		Title    string            `json:"title"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("stored history is not JSON: %v", err)
	}
	if got["keep"].Title != "Mine" {
		t.Fatalf("existing session overwritten: title=%q", got["keep"].Title)
	}
	if len(got["new1"].Messages) != 1 {
		t.Fatalf("new1 messages=%d, want 1", len(got["new1"].Messages))
	}
	if got["new2"].Title != "New Chat" {
		t.Fatalf("new2 title=%q, want %q", got["new2"].Title, "New Chat")
	}
}

func TestImportHistory_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("nope"), 0o644)
	if _, err := ImportHistory(path, NewMemorySlot()); err == nil {
		t.Fatal("expected error for malformed export")
	}
}
