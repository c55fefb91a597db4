package storage

import (
	"regexp"
	"testing"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if id == "" {
		t.Fatal("NewSessionID returned empty")
	}
	if !uuidRe.MatchString(id) {
		t.Fatalf("NewSessionID format unexpected: %q", id)
	}
	// Uniqueness in quick succession
	id2 := NewSessionID()
	if id == id2 {
		t.Fatal("NewSessionID should produce different ids")
	}
}

func TestNewMessageID(t *testing.T) {
	a := NewMessageID()
	b := NewMessageID()
	if !uuidRe.MatchString(a) {
		t.Fatalf("NewMessageID format unexpected: %q", a)
	}
	if a == b {
		t.Fatal("NewMessageID should produce different ids")
	}
	if a[14] != '7' {
		t.Fatalf("NewMessageID version=%c, want 7", a[14])
	}
}
