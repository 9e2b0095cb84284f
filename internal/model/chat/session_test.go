package chat

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionIDIsUnique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty session ids")
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if err := ValidateSessionID(a); err != nil {
		t.Fatalf("generated id rejected: %v", err)
	}
}

func TestValidateSessionID(t *testing.T) {
	cases := map[string]bool{
		"abc-123":                true,
		"session.with.dots":      true,
		"":                       false,
		"../etc/passwd":          false,
		"nested/key":             false,
		`win\path`:               false,
		"bell\a":                 false,
		strings.Repeat("x", 129): false,
		strings.Repeat("y", 128): true,
		"d7c4a1d2-5b8e-4f0e":     true,
	}

	for id, ok := range cases {
		err := ValidateSessionID(id)
		if ok && err != nil {
			t.Errorf("ValidateSessionID(%q) unexpected error: %v", id, err)
		}
		if !ok && err == nil {
			t.Errorf("ValidateSessionID(%q) expected error", id)
		}
	}
}

func TestNewMessageUsesUTCTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	at := time.Date(2025, 3, 1, 20, 30, 0, 0, loc)

	msg := NewMessage(RoleUser, "hi", at)
	if msg.Timestamp != "2025-03-01T12:30:00Z" {
		t.Fatalf("unexpected timestamp %s", msg.Timestamp)
	}
	if msg.Role != RoleUser || msg.Content != "hi" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
